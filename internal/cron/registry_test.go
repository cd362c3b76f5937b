package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndSkipsNil(t *testing.T) {
	registry := NewRegistry()
	jobA := &stubJob{name: "payment-reconcile"}
	jobB := &stubJob{name: "pending-payment-cleanup"}
	require.NoError(t, registry.Register(jobA))
	require.NoError(t, registry.Register(jobB))
	require.NoError(t, registry.Register(nil))
	jobs := registry.Jobs()
	assert.Equal(t, []Job{jobA, jobB}, jobs)
	assert.Equal(t, []string{"payment-reconcile", "pending-payment-cleanup"}, registry.Names())

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0], "caller must not mutate the registry")
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "payment-reconcile"})
	err := registry.Register(&stubJob{name: "payment-reconcile"})
	require.Error(t, err)
	assert.Len(t, registry.Jobs(), 1)

	assert.Panics(t, func() {
		NewRegistry(&stubJob{name: "a"}, &stubJob{name: "a"})
	})
}
