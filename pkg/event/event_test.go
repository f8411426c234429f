package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultranet/catalog/pkg/event"
)

func TestFireInOrder(t *testing.T) {
	d := event.New()
	var got []string
	d.Listen("product.created", func(p any) { got = append(got, "ws:"+p.(string)) })
	d.Listen("product.created", func(p any) { got = append(got, "metrics:"+p.(string)) })
	d.Listen("product.deleted", func(any) { t.Error("wrong event") })

	d.Fire("product.restored", "7")
	d.Fire("product.created", "7")

	assert.Equal(t, []string{"ws:7", "metrics:7"}, got)
}

func TestPanickingListenerIsIsolated(t *testing.T) {
	d := event.New()
	called := false
	d.Listen("product.updated", func(any) { panic("boom") })
	d.Listen("product.updated", func(any) { called = true })

	require.NotPanics(t, func() { d.Fire("product.updated", nil) })
	assert.True(t, called)
}
