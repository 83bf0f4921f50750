// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/restdata"
	"github.com/diffeo/go-fwrest/router"
)

// errUnmarshal is returned if the put/post contract is violated and
// a handler function is passed the wrong type.
var errUnmarshal = restdata.ErrBadRequest{
	Err: errors.New("Invalid input format"),
}

// context holds all of the information and objects that can be extracted
// from URL parameters.
type context struct {
	Request *http.Request

	// Bundle is the bundle named by the URL, if HasBundle.
	Bundle    framework.Bundle
	HasBundle bool

	// Service is the service named by the URL, if HasService.
	Service    framework.ServiceReference
	HasService bool

	// Filter is the service filter query parameter.
	Filter string
}

// parseID reads a numeric path variable.  Anything that is not a
// non-negative integer cannot name a resource.
func parseID(value string, missing error) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id < 0 {
		return 0, restdata.ErrNotFound{Err: missing}
	}
	return id, nil
}

func (api *restAPI) Context(req *http.Request) (ctx *context, err error) {
	ctx = &context{Request: req}
	ctx.Filter = req.URL.Query().Get(restdata.FilterParam)
	vars := router.Vars(req)

	if value, present := vars[restdata.BundleIDVar]; present && err == nil {
		var id int64
		id, err = parseID(value, errors.New("No such bundle "+strconv.Quote(value)))
		if err == nil {
			ctx.Bundle, err = api.Framework.Bundle(id)
		}
		if _, missing := err.(framework.ErrNoSuchBundle); missing {
			err = restdata.ErrNotFound{Err: err}
		}
		ctx.HasBundle = err == nil
	}

	if value, present := vars[restdata.ServiceIDVar]; present && err == nil {
		var id int64
		id, err = parseID(value, errors.New("No such service "+strconv.Quote(value)))
		if err == nil {
			ctx.Service, err = api.Framework.Service(id)
		}
		if _, missing := err.(framework.ErrNoSuchService); missing {
			err = restdata.ErrNotFound{Err: err}
		}
		ctx.HasService = err == nil
	}

	return
}
