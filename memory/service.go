// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"fmt"
	"sort"

	"github.com/diffeo/go-fwrest/framework"
)

type service struct {
	id         int64
	bundle     int64
	properties map[string]interface{}

	// using counts each bundle's uses of this service.
	using map[int64]int
}

func (s *service) reference() framework.ServiceReference {
	using := make([]int64, 0, len(s.using))
	for id := range s.using {
		using = append(using, id)
	}
	sort.Slice(using, func(i, j int) bool { return using[i] < using[j] })
	return framework.ServiceReference{
		ID:           s.id,
		Bundle:       s.bundle,
		Properties:   copyProperties(s.properties),
		UsingBundles: using,
	}
}

func copyProperties(props map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(props))
	for k, v := range props {
		switch vv := v.(type) {
		case []string:
			result[k] = append([]string{}, vv...)
		case map[string]interface{}:
			result[k] = copyProperties(vv)
		default:
			result[k] = v
		}
	}
	return result
}

// normalizeProperties converts caller-supplied property values to the
// types that cross the management interface: integers become int64,
// floats float64, and lists of strings []string.
func normalizeProperties(props map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(props))
	for k, v := range props {
		switch vv := v.(type) {
		case string, bool, int64, float64, []string:
			result[k] = vv
		case int:
			result[k] = int64(vv)
		case int32:
			result[k] = int64(vv)
		case float32:
			result[k] = float64(vv)
		case []interface{}:
			strs := make([]string, len(vv))
			for i, item := range vv {
				s, isString := item.(string)
				if !isString {
					return nil, fmt.Errorf("property %v: list item %T is not a string", k, item)
				}
				strs[i] = s
			}
			result[k] = strs
		case map[string]interface{}:
			nested, err := normalizeProperties(vv)
			if err != nil {
				return nil, fmt.Errorf("property %v: %v", k, err)
			}
			result[k] = nested
		default:
			return nil, fmt.Errorf("property %v: unsupported type %T", k, v)
		}
	}
	return result, nil
}

// Services returns the services matching an LDAP filter, in id order.
func (rt *Runtime) Services(filter string) (refs []framework.ServiceReference, err error) {
	var f Filter
	if filter != "" {
		f, err = ParseFilter(filter)
		if err != nil {
			return
		}
	}
	err = rt.do(func() error {
		refs = make([]framework.ServiceReference, 0, len(rt.services))
		for _, s := range rt.services {
			if f == nil || f.Match(s.properties) {
				refs = append(refs, s.reference())
			}
		}
		sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
		return nil
	})
	return
}

// Service returns a single service.
func (rt *Runtime) Service(id int64) (ref framework.ServiceReference, err error) {
	err = rt.do(func() error {
		s, present := rt.services[id]
		if !present {
			return framework.ErrNoSuchService{ID: id}
		}
		ref = s.reference()
		return nil
	})
	return
}

// framework.ServiceRegistrar interface:

// RegisterService publishes a service on behalf of an active bundle.
// The "objectClass" property may be a string or a list of strings;
// "service.id" and "service.bundleid" are filled in.
func (rt *Runtime) RegisterService(bundleID int64, properties map[string]interface{}) (id int64, err error) {
	var props map[string]interface{}
	props, err = normalizeProperties(properties)
	if err != nil {
		return
	}
	switch class := props[framework.ObjectClass].(type) {
	case string:
		props[framework.ObjectClass] = []string{class}
	case []string:
		if len(class) == 0 {
			err = framework.ErrNoObjectClass
			return
		}
	default:
		err = framework.ErrNoObjectClass
		return
	}
	err = rt.do(func() error {
		b, err := rt.lookup(bundleID)
		if err != nil {
			return err
		}
		if !b.isActive() {
			return framework.ErrInvalidState{ID: b.id, State: b.state}
		}
		if b.state == framework.Starting {
			// Lazy activation completes on first use of the
			// bundle, which registering a service is
			b.state = framework.Active
		}
		id = rt.nextServiceID
		rt.nextServiceID++
		props[framework.ServiceID] = id
		props[framework.ServiceBundleID] = b.id
		rt.services[id] = &service{
			id:         id,
			bundle:     b.id,
			properties: props,
			using:      make(map[int64]int),
		}
		b.services = append(b.services, id)
		return nil
	})
	return
}

// UnregisterService withdraws a service.
func (rt *Runtime) UnregisterService(id int64) error {
	return rt.do(func() error {
		if _, present := rt.services[id]; !present {
			return framework.ErrNoSuchService{ID: id}
		}
		rt.unregister(id)
		return nil
	})
}

// unregister removes a service and every use of it.  Call holding the
// global lock.
func (rt *Runtime) unregister(id int64) {
	s := rt.services[id]
	delete(rt.services, id)
	for bundleID := range s.using {
		if b, present := rt.bundles[bundleID]; present {
			delete(b.using, id)
		}
	}
	if b, present := rt.bundles[s.bundle]; present {
		for i, sid := range b.services {
			if sid == id {
				b.services = append(b.services[:i], b.services[i+1:]...)
				break
			}
		}
	}
}

// UseService records that a bundle gets a service.  Uses are counted;
// each needs a matching UngetService.
func (rt *Runtime) UseService(bundleID, serviceID int64) error {
	return rt.do(func() error {
		b, err := rt.lookup(bundleID)
		if err != nil {
			return err
		}
		if !b.isActive() {
			return framework.ErrInvalidState{ID: b.id, State: b.state}
		}
		s, present := rt.services[serviceID]
		if !present {
			return framework.ErrNoSuchService{ID: serviceID}
		}
		b.using[s.id]++
		s.using[b.id]++
		return nil
	})
}

// UngetService releases one use of a service.  Releasing a service
// that is not in use does nothing.
func (rt *Runtime) UngetService(bundleID, serviceID int64) error {
	return rt.do(func() error {
		b, err := rt.lookup(bundleID)
		if err != nil {
			return err
		}
		s, present := rt.services[serviceID]
		if !present {
			return framework.ErrNoSuchService{ID: serviceID}
		}
		if b.using[s.id] <= 1 {
			delete(b.using, s.id)
			delete(s.using, b.id)
		} else {
			b.using[s.id]--
			s.using[b.id]--
		}
		return nil
	})
}
