package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorValidate(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		wantErr bool
	}{
		{"human", Actor{Kind: ActorHuman, ID: "alice"}, false},
		{"agent", Actor{Kind: ActorAgent, ID: "planner-1"}, false},
		{"system", Actor{Kind: ActorSystem, ID: "engine"}, false},
		{"unknown kind", Actor{Kind: "robot", ID: "x"}, true},
		{"empty kind", Actor{ID: "x"}, true},
		{"empty id", Actor{Kind: ActorHuman}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.actor.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestActorStringRoundTrip(t *testing.T) {
	actor := Actor{Kind: ActorAgent, ID: "planner-1"}
	parsed, err := ParseActor(actor.String())
	require.NoError(t, err)
	assert.Equal(t, actor, parsed)
}

func TestParseActorErrors(t *testing.T) {
	for _, in := range []string{"", "noseparator", "robot:x", "human:"} {
		_, err := ParseActor(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestCommandEnvelopeValidate(t *testing.T) {
	valid := CommandEnvelope{
		CommandID:      "cmd-1",
		DocumentID:     "doc-1",
		BaseRevision:   0,
		IdempotencyKey: "key-1",
		Actor:          Actor{Kind: ActorHuman, ID: "alice"},
		OpKind:         "set_field",
		OpArgs:         Object{},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*CommandEnvelope)
	}{
		{"missing command_id", func(c *CommandEnvelope) { c.CommandID = "" }},
		{"missing document_id", func(c *CommandEnvelope) { c.DocumentID = "" }},
		{"negative base", func(c *CommandEnvelope) { c.BaseRevision = -1 }},
		{"missing idempotency_key", func(c *CommandEnvelope) { c.IdempotencyKey = "" }},
		{"missing op_kind", func(c *CommandEnvelope) { c.OpKind = "" }},
		{"bad actor", func(c *CommandEnvelope) { c.Actor.ID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := valid
			tt.mutate(&env)
			assert.Error(t, env.Validate())
		})
	}
}
