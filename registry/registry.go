// Package registry operates the global registry of component models. Model packages register
// themselves from init and the robot builds them from config by API and model name.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
)

// API names a kind of component.
type API string

// Known component APIs.
const (
	TelemeterAPI = API("telemeter")
	ContactAPI   = API("contact")
	IndicatorAPI = API("indicator")
)

// Registration describes how to build one model of a component API.
type Registration[T any] struct {
	Constructor func(ctx context.Context, conf config.Component, logger logging.Logger) (T, error)
	// Attributes returns a fresh pointer to the model's attribute struct. Nil for models that
	// take no attributes.
	Attributes func() interface{}
}

type entry struct {
	attributes   func() interface{}
	registration interface{}
}

var (
	mu            sync.RWMutex
	registrations = map[API]map[string]entry{}
)

// Register registers a model of an API. Registering the same model twice panics.
func Register[T any](api API, model string, reg Registration[T]) {
	mu.Lock()
	defer mu.Unlock()
	if reg.Constructor == nil {
		panic(errors.Errorf("cannot register %s model %q without a constructor", api, model))
	}
	models, ok := registrations[api]
	if !ok {
		models = map[string]entry{}
		registrations[api] = models
	}
	if _, old := models[model]; old {
		panic(errors.Errorf("trying to register two %s models named %q", api, model))
	}
	models[model] = entry{attributes: reg.Attributes, registration: reg}
}

// Models lists the registered models of an API in sorted order.
func Models(api API) []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registrations[api]))
	for name := range registrations[api] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(api API, model string) (entry, error) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registrations[api][model]
	if !ok {
		return entry{}, errors.Errorf("unknown %s model %q", api, model)
	}
	return e, nil
}

// ConvertAttributes decodes the component's attribute map into the model's attribute struct
// and stores it in ConvertedAttributes.
func ConvertAttributes(conf *config.Component) error {
	e, err := lookup(API(conf.API), conf.Model)
	if err != nil {
		return err
	}
	if e.attributes == nil {
		if len(conf.Attributes) > 0 {
			return errors.Errorf("%s model %q takes no attributes", conf.API, conf.Model)
		}
		return nil
	}
	converted, err := config.TransformAttributeMapToStruct(e.attributes(), conf.Attributes)
	if err != nil {
		return errors.Wrapf(err, "component %q", conf.Name)
	}
	conf.ConvertedAttributes = converted
	return nil
}

// Build converts and validates the component's attributes and constructs it.
func Build[T any](ctx context.Context, conf config.Component, logger logging.Logger) (T, error) {
	var zero T
	e, err := lookup(API(conf.API), conf.Model)
	if err != nil {
		return zero, err
	}
	reg, ok := e.registration.(Registration[T])
	if !ok {
		return zero, errors.Errorf("%s model %q does not build the requested type", conf.API, conf.Model)
	}
	if conf.ConvertedAttributes == nil {
		if err := ConvertAttributes(&conf); err != nil {
			return zero, err
		}
	}
	if err := conf.Validate(conf.Name); err != nil {
		return zero, err
	}
	return reg.Constructor(ctx, conf, logger.Sublogger(conf.Name))
}
