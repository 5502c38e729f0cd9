package eventbus

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tenantRegistered struct {
	name string
}

type leaseSigned struct {
	resident string
}

func testLogger(buf *bytes.Buffer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(logrus.WarnLevel)
	return log
}

func TestPublish_DispatchesByArgumentType(t *testing.T) {
	bus := NewEventPublisher(testLogger(&bytes.Buffer{}))

	var got string
	bus.Subscribe(func(e *tenantRegistered) {
		got = e.name
	})
	bus.Publish(&tenantRegistered{name: "acme"})

	assert.Equal(t, "acme", got)
}

func TestPublish_NoMatchingSubscriberLogs(t *testing.T) {
	var buf bytes.Buffer
	bus := NewEventPublisher(testLogger(&buf))

	bus.Subscribe(func(e *tenantRegistered) {
		t.Error("should not be called")
	})
	bus.Publish(&leaseSigned{resident: "J. Doe"})

	require.True(t, strings.Contains(buf.String(), "no matching subscribers"))
}

func TestPublish_RecoveredPanicDoesNotStopDispatch(t *testing.T) {
	var buf bytes.Buffer
	bus := NewEventPublisher(testLogger(&buf))

	called := false
	bus.Subscribe(func(e *leaseSigned) { panic("boom") })
	bus.Subscribe(func(e *leaseSigned) { called = true })
	bus.Publish(&leaseSigned{resident: "J. Doe"})

	assert.True(t, called)
	assert.Contains(t, buf.String(), "panicked")
}

func TestUnsubscribe(t *testing.T) {
	bus := NewEventPublisher(testLogger(&bytes.Buffer{}))

	handler := func(e *tenantRegistered) {}
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())
	bus.Unsubscribe(handler)
	require.Equal(t, 0, bus.SubscribersCount())
}
