// Package stagetest provides stage sequences for tests.
package stagetest

import (
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/stage"
)

const (
	// HomeServicesID is the six-stage on-site category; cancellable up to ACCEPTED.
	HomeServicesID = "home-services"
	// BasicID is the four-stage category PENDING, ACCEPTED, IN_PROGRESS, COMPLETED; cancellable up to ACCEPTED.
	BasicID = "basic"
	// ConsultationID has the same stages as Basic but stays cancellable through IN_PROGRESS.
	ConsultationID = "remote-consultation"
)

func HomeServices() *stage.Sequence {
	return mustSequence(HomeServicesID, stage.Accepted,
		spec(stage.Pending, 0, kernel.RoleSystem, false),
		spec(stage.Searching, 10, kernel.RoleSystem, false),
		spec(stage.Accepted, 20, kernel.RoleWorker, false),
		spec(stage.OnTheWay, 30, kernel.RoleWorker, false),
		spec(stage.InProgress, 40, kernel.RoleWorker, false),
		spec(stage.Completed, 50, kernel.RoleWorker, true),
	)
}

func Basic() *stage.Sequence {
	return mustSequence(BasicID, stage.Accepted, fourStages()...)
}

func Consultation() *stage.Sequence {
	return mustSequence(ConsultationID, stage.InProgress, fourStages()...)
}

// Registry holds HomeServices, Basic and Consultation.
func Registry() *stage.Registry {
	r, err := stage.NewRegistry(HomeServices(), Basic(), Consultation())
	if err != nil {
		panic(err)
	}
	return r
}

func fourStages() []stage.DefinitionSpec {
	return []stage.DefinitionSpec{
		spec(stage.Pending, 1, kernel.RoleSystem, false),
		spec(stage.Accepted, 2, kernel.RoleWorker, false),
		spec(stage.InProgress, 3, kernel.RoleWorker, false),
		spec(stage.Completed, 4, kernel.RoleWorker, true),
	}
}

func spec(key stage.Key, order int, drivenBy kernel.Role, terminal bool) stage.DefinitionSpec {
	return stage.DefinitionSpec{
		Key:           key,
		Order:         order,
		Label:         string(key),
		Description:   "stage " + string(key),
		Terminal:      terminal,
		DrivenBy:      drivenBy,
		AssignsWorker: key == stage.Accepted,
	}
}

func mustSequence(categoryID string, boundary stage.Key, specs ...stage.DefinitionSpec) *stage.Sequence {
	defs := make([]stage.Definition, 0, len(specs))
	for _, s := range specs {
		def, err := stage.NewDefinition(s)
		if err != nil {
			panic(err)
		}
		defs = append(defs, def)
	}
	seq, err := stage.NewSequence(categoryID, defs, boundary)
	if err != nil {
		panic(err)
	}
	return seq
}
