package model

import (
	"github.com/fcrepo-go/lsup/pkg/events"
	"github.com/fcrepo-go/lsup/pkg/rdf"
)

const (
	eventVersionCreated  = events.EventVersionCreated
	eventVersionReverted = events.EventVersionReverted
)

// eventFor builds a changelog event for a resource-scoped operation,
// quadifying the remove/add triple sets against the resource's admin
// graph so the emitted event carries a concrete context even though
// the triples it names may have been routed across admin/user/struct.
func eventFor(t events.EventType, uid string, resourceTypes []string, actor string, removeSet, addSet []rdf.Triple) events.Event {
	ctx := rdf.GraphAdmin(uid)
	return events.Event{
		Type:          t,
		UID:           uid,
		ResourceTypes: resourceTypes,
		Actor:         actor,
		RemoveSet:     quadify(removeSet, ctx),
		AddSet:        quadify(addSet, ctx),
	}
}
