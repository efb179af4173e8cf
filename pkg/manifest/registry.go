package manifest

import (
	"fmt"

	"github.com/NOAA-EPIC/AQM-Eval/pkg/manifest/status"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
)

type registryKey struct {
	kind    model.DatasetKind
	useCase model.UseCaseKey
}

var registry = map[registryKey]*Descriptor{}

// Register validates a descriptor and adds it to the lookup table.
// Descriptors are wired at package initialization: a malformed or
// duplicate registration is a programming error and panics.
func Register(d *Descriptor) {
	if err := d.Validate(); err != nil {
		panic(err)
	}
	key := registryKey{kind: d.Kind, useCase: d.UseCase}
	if _, dup := registry[key]; dup {
		panic(fmt.Sprintf("dataset descriptor already registered for %s", d))
	}
	registry[key] = d
}

// Lookup resolves the descriptor registered for a dataset kind and use case.
func Lookup(kind model.DatasetKind, useCase model.UseCaseKey) (*Descriptor, error) {
	d, ok := registry[registryKey{kind: kind, useCase: useCase}]
	if !ok {
		return nil, status.ErrUnresolvableRequest.Wrap(
			fmt.Errorf("no dataset registered for kind %q with use case %q", kind, useCase))
	}
	return d, nil
}
