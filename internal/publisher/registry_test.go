package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePublisher struct {
	name string
}

func (f *fakePublisher) Name() string { return f.name }

func (f *fakePublisher) Publish(ctx context.Context, content Content, opts Options) (*Result, error) {
	return &Result{Success: true}, nil
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	require.NoError(t, registry.Register(&fakePublisher{name: "wordpress"}))

	resolved, err := registry.Resolve("wordpress")
	require.NoError(t, err)
	assert.Equal(t, "wordpress", resolved.Name())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	require.NoError(t, registry.Register(&fakePublisher{name: "wordpress"}))
	assert.Error(t, registry.Register(&fakePublisher{name: "wordpress"}))
}

func TestRegistryResolveUnknownPlatform(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	_, err := registry.Resolve("medium")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported platform")
}

func TestRegistryNames(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	require.NoError(t, registry.Register(&fakePublisher{name: "wordpress"}))
	require.NoError(t, registry.Register(&fakePublisher{name: "shopify"}))

	assert.ElementsMatch(t, []string{"wordpress", "shopify"}, registry.Names())
}

func TestContentCloneIsIndependent(t *testing.T) {
	base := Content{
		Title:    "Original",
		Tags:     []string{"seo"},
		Metadata: map[string]string{"lang": "en"},
	}

	clone := base.Clone()
	clone.Title = "Changed"
	clone.Tags[0] = "sem"
	clone.Metadata["lang"] = "de"

	assert.Equal(t, "Original", base.Title)
	assert.Equal(t, "seo", base.Tags[0])
	assert.Equal(t, "en", base.Metadata["lang"])
}
