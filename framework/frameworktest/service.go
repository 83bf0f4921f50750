// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package frameworktest

import (
	"strconv"

	"github.com/diffeo/go-fwrest/framework"
)

// register publishes a service from a bundle, failing the test if
// that does not work.
func (s *Suite) register(bundle int64, properties map[string]interface{}) int64 {
	id, err := s.Registrar.RegisterService(bundle, properties)
	s.Require().NoError(err)
	return id
}

func serviceIDs(refs []framework.ServiceReference) []int64 {
	ids := make([]int64, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	return ids
}

// TestServiceLifetime registers, uses, and withdraws a service.
func (s *Suite) TestServiceLifetime() {
	if s.Registrar == nil {
		s.T().Skip("no service registrar")
	}
	provider := s.Start("provider")
	consumer := s.Start("consumer")

	id := s.register(provider.ID, map[string]interface{}{
		framework.ObjectClass: "org.example.Greeter",
		"service.ranking":     10,
		"language":            []string{"en", "fr"},
		"weight":              0.5,
		"enabled":             true,
		"config": map[string]interface{}{
			"greeting": "hello",
		},
	})

	ref, err := s.Framework.Service(id)
	if s.NoError(err) {
		s.Equal(id, ref.ID)
		s.Equal(provider.ID, ref.Bundle)
		s.Equal(map[string]interface{}{
			framework.ObjectClass:     []string{"org.example.Greeter"},
			framework.ServiceID:       id,
			framework.ServiceBundleID: provider.ID,
			"service.ranking":         int64(10),
			"language":                []string{"en", "fr"},
			"weight":                  0.5,
			"enabled":                 true,
			"config": map[string]interface{}{
				"greeting": "hello",
			},
		}, ref.Properties)
		s.Empty(ref.UsingBundles)
	}

	bundle, err := s.Framework.Bundle(provider.ID)
	if s.NoError(err) {
		s.Equal([]int64{id}, bundle.RegisteredServices)
	}

	err = s.Registrar.UseService(consumer.ID, id)
	s.NoError(err)
	ref, err = s.Framework.Service(id)
	if s.NoError(err) {
		s.Equal([]int64{consumer.ID}, ref.UsingBundles)
	}
	bundle, err = s.Framework.Bundle(consumer.ID)
	if s.NoError(err) {
		s.Equal([]int64{id}, bundle.ServicesInUse)
	}

	err = s.Registrar.UngetService(consumer.ID, id)
	s.NoError(err)
	ref, err = s.Framework.Service(id)
	if s.NoError(err) {
		s.Empty(ref.UsingBundles)
	}

	// Stopping the provider withdraws the service
	err = s.Registrar.UseService(consumer.ID, id)
	s.NoError(err)
	err = s.Framework.SetBundleState(provider.ID, framework.Resolved, 0)
	s.NoError(err)
	_, err = s.Framework.Service(id)
	s.Equal(framework.ErrNoSuchService{ID: id}, err)
	bundle, err = s.Framework.Bundle(consumer.ID)
	if s.NoError(err) {
		s.Empty(bundle.ServicesInUse)
	}
}

// TestRegisterErrors checks the preconditions on registering a
// service.
func (s *Suite) TestRegisterErrors() {
	if s.Registrar == nil {
		s.T().Skip("no service registrar")
	}
	bundle := s.Install("inactive")

	_, err := s.Registrar.RegisterService(bundle.ID, map[string]interface{}{
		framework.ObjectClass: "org.example.Greeter",
	})
	s.Error(err)

	err = s.Framework.SetBundleState(bundle.ID, framework.Active, 0)
	s.NoError(err)

	_, err = s.Registrar.RegisterService(bundle.ID, map[string]interface{}{"x": "y"})
	s.Equal(framework.ErrNoObjectClass, err)

	_, err = s.Registrar.RegisterService(999999, map[string]interface{}{
		framework.ObjectClass: "org.example.Greeter",
	})
	s.Equal(framework.ErrNoSuchBundle{ID: 999999}, err)

	err = s.Registrar.UnregisterService(999999)
	s.Equal(framework.ErrNoSuchService{ID: 999999}, err)
}

// TestServiceFilters looks services up by LDAP filter.
func (s *Suite) TestServiceFilters() {
	if s.Registrar == nil {
		s.T().Skip("no service registrar")
	}
	bundle := s.Start("filters")
	greeter := s.register(bundle.ID, map[string]interface{}{
		framework.ObjectClass: []string{"org.example.Greeter", "org.example.Named"},
		"service.ranking":     5,
		"language":            "en",
	})
	farewell := s.register(bundle.ID, map[string]interface{}{
		framework.ObjectClass: "org.example.Farewell",
		"service.ranking":     20,
		"language":            "fr",
	})

	tests := []struct {
		Filter   string
		Expected []int64
	}{
		{"(objectClass=org.example.Greeter)", []int64{greeter}},
		{"(objectClass=org.example.Named)", []int64{greeter}},
		{"(OBJECTCLASS=org.example.Farewell)", []int64{farewell}},
		{"(objectClass=org.example.*)", []int64{greeter, farewell}},
		{"(&(objectClass=org.example.*)(service.ranking>=10))", []int64{farewell}},
		{"(|(language=en)(language=fr))", []int64{greeter, farewell}},
		{"(&(objectClass=org.example.*)(!(language=en)))", []int64{farewell}},
		{"(&(service.bundleid=" + itoa(bundle.ID) + ")(language=*))", []int64{greeter, farewell}},
		{"(&(service.bundleid=" + itoa(bundle.ID) + ")(service.ranking<=5))", []int64{greeter}},
		{"(&(service.bundleid=" + itoa(bundle.ID) + ")(language~= EN ))", []int64{greeter}},
		{"(objectClass=org.example.Nothing)", []int64{}},
	}
	for _, test := range tests {
		refs, err := s.Framework.Services(test.Filter)
		if s.NoError(err, test.Filter) {
			s.Equal(test.Expected, serviceIDs(refs), test.Filter)
		}
	}

	refs, err := s.Framework.Services("")
	if s.NoError(err) {
		s.Subset(serviceIDs(refs), []int64{greeter, farewell})
	}

	_, err = s.Framework.Services("(objectClass=")
	s.Error(err)
}

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}
