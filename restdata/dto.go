// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"github.com/diffeo/go-fwrest/framework"
)

// FrameworkStartLevelShape describes framework.FrameworkStartLevel.
var FrameworkStartLevelShape = &Shape{
	Name: "frameworkStartLevel",
	New:  func() interface{} { return &framework.FrameworkStartLevel{} },
	Fields: []Field{
		IntField("startLevel",
			func(r interface{}) int64 { return int64(r.(*framework.FrameworkStartLevel).StartLevel) },
			func(r interface{}, v int64) { r.(*framework.FrameworkStartLevel).StartLevel = int(v) }),
		IntField("initialBundleStartLevel",
			func(r interface{}) int64 { return int64(r.(*framework.FrameworkStartLevel).InitialBundleStartLevel) },
			func(r interface{}, v int64) { r.(*framework.FrameworkStartLevel).InitialBundleStartLevel = int(v) }),
	},
}

// BundleShape describes framework.Bundle.
var BundleShape = &Shape{
	Name: "bundle",
	New:  func() interface{} { return &framework.Bundle{} },
	Fields: []Field{
		IntField("id",
			func(r interface{}) int64 { return r.(*framework.Bundle).ID },
			func(r interface{}, v int64) { r.(*framework.Bundle).ID = v }),
		StringField("symbolicName",
			func(r interface{}) string { return r.(*framework.Bundle).SymbolicName },
			func(r interface{}, v string) { r.(*framework.Bundle).SymbolicName = v }),
		StringField("version",
			func(r interface{}) string { return r.(*framework.Bundle).Version },
			func(r interface{}, v string) { r.(*framework.Bundle).Version = v }),
		IntField("state",
			func(r interface{}) int64 { return int64(r.(*framework.Bundle).State) },
			func(r interface{}, v int64) { r.(*framework.Bundle).State = framework.BundleState(v) }),
		StringField("location",
			func(r interface{}) string { return r.(*framework.Bundle).Location },
			func(r interface{}, v string) { r.(*framework.Bundle).Location = v }),
		IntField("lastModified",
			func(r interface{}) int64 { return r.(*framework.Bundle).LastModified },
			func(r interface{}, v int64) { r.(*framework.Bundle).LastModified = v }),
		IntListField("registeredServices",
			func(r interface{}) []int64 { return r.(*framework.Bundle).RegisteredServices },
			func(r interface{}, v []int64) { r.(*framework.Bundle).RegisteredServices = v }),
		IntListField("servicesInUse",
			func(r interface{}) []int64 { return r.(*framework.Bundle).ServicesInUse },
			func(r interface{}, v []int64) { r.(*framework.Bundle).ServicesInUse = v }),
	},
}

// BundleStatusShape describes framework.BundleStatus.  Options are
// only sent when set, so a GET returns just the state.
var BundleStatusShape = &Shape{
	Name: "bundleState",
	New:  func() interface{} { return &framework.BundleStatus{} },
	Fields: []Field{
		IntField("state",
			func(r interface{}) int64 { return int64(r.(*framework.BundleStatus).State) },
			func(r interface{}, v int64) { r.(*framework.BundleStatus).State = framework.BundleState(v) }),
		IntField("options",
			func(r interface{}) int64 { return int64(r.(*framework.BundleStatus).Options) },
			func(r interface{}, v int64) { r.(*framework.BundleStatus).Options = int(v) }).Omit(),
	},
}

// BundleStartLevelShape describes framework.BundleStartLevel.
var BundleStartLevelShape = &Shape{
	Name: "bundleStartLevel",
	New:  func() interface{} { return &framework.BundleStartLevel{} },
	Fields: []Field{
		IntField("bundle",
			func(r interface{}) int64 { return r.(*framework.BundleStartLevel).Bundle },
			func(r interface{}, v int64) { r.(*framework.BundleStartLevel).Bundle = v }),
		IntField("startLevel",
			func(r interface{}) int64 { return int64(r.(*framework.BundleStartLevel).StartLevel) },
			func(r interface{}, v int64) { r.(*framework.BundleStartLevel).StartLevel = int(v) }),
		BoolField("activationPolicyUsed",
			func(r interface{}) bool { return r.(*framework.BundleStartLevel).ActivationPolicyUsed },
			func(r interface{}, v bool) { r.(*framework.BundleStartLevel).ActivationPolicyUsed = v }),
		BoolField("persistentlyStarted",
			func(r interface{}) bool { return r.(*framework.BundleStartLevel).PersistentlyStarted },
			func(r interface{}, v bool) { r.(*framework.BundleStartLevel).PersistentlyStarted = v }),
	},
}

// ServiceReferenceShape describes framework.ServiceReference.
var ServiceReferenceShape = &Shape{
	Name: "service",
	New:  func() interface{} { return &framework.ServiceReference{} },
	Fields: []Field{
		IntField("id",
			func(r interface{}) int64 { return r.(*framework.ServiceReference).ID },
			func(r interface{}, v int64) { r.(*framework.ServiceReference).ID = v }),
		IntField("bundle",
			func(r interface{}) int64 { return r.(*framework.ServiceReference).Bundle },
			func(r interface{}, v int64) { r.(*framework.ServiceReference).Bundle = v }),
		PropertiesField("properties",
			func(r interface{}) map[string]interface{} { return r.(*framework.ServiceReference).Properties },
			func(r interface{}, v map[string]interface{}) { r.(*framework.ServiceReference).Properties = v }),
		IntListField("usingBundles",
			func(r interface{}) []int64 { return r.(*framework.ServiceReference).UsingBundles },
			func(r interface{}, v []int64) { r.(*framework.ServiceReference).UsingBundles = v }),
	},
}

// ExtensionShape describes framework.Extension.
var ExtensionShape = &Shape{
	Name: "extension",
	New:  func() interface{} { return &framework.Extension{} },
	Fields: []Field{
		StringField("name",
			func(r interface{}) string { return r.(*framework.Extension).Name },
			func(r interface{}, v string) { r.(*framework.Extension).Name = v }),
		StringField("path",
			func(r interface{}) string { return r.(*framework.Extension).Path },
			func(r interface{}, v string) { r.(*framework.Extension).Path = v }),
	},
}

// ErrorShape describes ErrorResponse.
var ErrorShape = &Shape{
	Name: "error",
	New:  func() interface{} { return &ErrorResponse{} },
	Fields: []Field{
		StringField("error",
			func(r interface{}) string { return r.(*ErrorResponse).Error },
			func(r interface{}, v string) { r.(*ErrorResponse).Error = v }),
		StringField("message",
			func(r interface{}) string { return r.(*ErrorResponse).Message },
			func(r interface{}, v string) { r.(*ErrorResponse).Message = v }),
		IntField("value",
			func(r interface{}) int64 { return r.(*ErrorResponse).Value },
			func(r interface{}, v int64) { r.(*ErrorResponse).Value = v }).Omit(),
		StringField("subject",
			func(r interface{}) string { return r.(*ErrorResponse).Subject },
			func(r interface{}, v string) { r.(*ErrorResponse).Subject = v }).Omit(),
		StringField("reason",
			func(r interface{}) string { return r.(*ErrorResponse).Reason },
			func(r interface{}, v string) { r.(*ErrorResponse).Reason = v }).Omit(),
		IntField("state",
			func(r interface{}) int64 { return r.(*ErrorResponse).State },
			func(r interface{}, v int64) { r.(*ErrorResponse).State = v }).Omit(),
		StringField("stack",
			func(r interface{}) string { return r.(*ErrorResponse).Stack },
			func(r interface{}, v string) { r.(*ErrorResponse).Stack = v }).Omit(),
	},
}

// Targets for each resource kind.
var (
	FrameworkStartLevelTarget = RecordOf(FrameworkStartLevelShape)
	BundleTarget              = RecordOf(BundleShape)
	BundleListTarget          = ListOf(BundleShape)
	BundlePathsTarget         = StringsOf("bundles", "bundle")
	BundleStatusTarget        = RecordOf(BundleStatusShape)
	BundleHeaderTarget        = StringMapOf("headers")
	BundleStartLevelTarget    = RecordOf(BundleStartLevelShape)
	ServiceTarget             = RecordOf(ServiceReferenceShape)
	ServiceListTarget         = ListOf(ServiceReferenceShape)
	ServicePathsTarget        = StringsOf("services", "service")
	ExtensionListTarget       = ListOf(ExtensionShape)
	ErrorTarget               = RecordOf(ErrorShape)
)

// BundleList converts bundles to the value form of BundleListTarget.
func BundleList(bundles []framework.Bundle) []interface{} {
	result := make([]interface{}, len(bundles))
	for i := range bundles {
		result[i] = &bundles[i]
	}
	return result
}

// ServiceList converts services to the value form of
// ServiceListTarget.
func ServiceList(services []framework.ServiceReference) []interface{} {
	result := make([]interface{}, len(services))
	for i := range services {
		result[i] = &services[i]
	}
	return result
}

// ExtensionList converts extensions to the value form of
// ExtensionListTarget.
func ExtensionList(extensions []framework.Extension) []interface{} {
	result := make([]interface{}, len(extensions))
	for i := range extensions {
		result[i] = &extensions[i]
	}
	return result
}

// Bundles converts the decoded form of BundleListTarget back to
// bundles.
func Bundles(list []interface{}) []framework.Bundle {
	result := make([]framework.Bundle, len(list))
	for i, item := range list {
		result[i] = *item.(*framework.Bundle)
	}
	return result
}

// Services converts the decoded form of ServiceListTarget back to
// service references.
func Services(list []interface{}) []framework.ServiceReference {
	result := make([]framework.ServiceReference, len(list))
	for i, item := range list {
		result[i] = *item.(*framework.ServiceReference)
	}
	return result
}

// Extensions converts the decoded form of ExtensionListTarget back
// to extensions.
func Extensions(list []interface{}) []framework.Extension {
	result := make([]framework.Extension, len(list))
	for i, item := range list {
		result[i] = *item.(*framework.Extension)
	}
	return result
}
