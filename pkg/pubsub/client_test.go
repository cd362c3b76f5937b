package pubsub

import (
	"context"
	"testing"

	"github.com/leafcart/nursery-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	tests := []struct {
		project, name, want string
	}{
		{"leafcart", "nursery-notification-events", "projects/leafcart/topics/nursery-notification-events"},
		{"leafcart", " projects/other/topics/t ", "projects/other/topics/t"},
		{"leafcart", "", ""},
		{"", "events", ""},
	}
	for _, tt := range tests {
		if got := topicResourceName(tt.project, tt.name); got != tt.want {
			t.Fatalf("topicResourceName(%q, %q) = %q, want %q", tt.project, tt.name, got, tt.want)
		}
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	if _, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
}

func TestUninitializedClient(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client should be a no-op: %v", err)
	}
	if _, err := c.Publish(context.Background(), "topic", nil, nil); err == nil {
		t.Fatal("expected publish error on nil client")
	}
}
