package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestChatRepo_CreateAndGet(t *testing.T) {
	repo := NewChatRepo(newTestDB(t))
	ctx := context.Background()

	chat, err := repo.CreateChat(ctx, "user-7")
	if err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	if chat.ID == "" || chat.UserID != "user-7" {
		t.Errorf("CreateChat() = %+v, want id and user-7", chat)
	}

	got, err := repo.GetChat(ctx, chat.ID)
	if err != nil {
		t.Fatalf("GetChat() error = %v", err)
	}
	if got.ID != chat.ID {
		t.Errorf("GetChat() ID = %v, want %v", got.ID, chat.ID)
	}

	if _, err := repo.GetChat(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetChat(missing) error = %v, want ErrNotFound", err)
	}
}

func TestChatRepo_AppendMessage_UnknownChat(t *testing.T) {
	repo := NewChatRepo(newTestDB(t))

	err := repo.AppendMessage(context.Background(), &MessageRecord{ChatID: "missing", Role: "user", Content: "ciao"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("AppendMessage() error = %v, want ErrNotFound", err)
	}
}

func TestChatRepo_ListRecentMessages(t *testing.T) {
	repo := NewChatRepo(newTestDB(t))
	ctx := context.Background()

	chat, err := repo.CreateChat(ctx, "")
	if err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		msg := &MessageRecord{ChatID: chat.ID, Role: "user", Content: fmt.Sprintf("m%d", i)}
		if err := repo.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage() error = %v", err)
		}
		if msg.ID == "" {
			t.Fatal("AppendMessage() did not set ID")
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "latest three oldest first", limit: 3, want: []string{"m2", "m3", "m4"}},
		{name: "limit above count", limit: 10, want: []string{"m0", "m1", "m2", "m3", "m4"}},
		{name: "zero limit", limit: 0, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := repo.ListRecentMessages(ctx, chat.ID, tt.limit)
			if err != nil {
				t.Fatalf("ListRecentMessages() error = %v", err)
			}
			if len(msgs) != len(tt.want) {
				t.Fatalf("ListRecentMessages() returned %d messages, want %d", len(msgs), len(tt.want))
			}
			for i, m := range msgs {
				if m.Content != tt.want[i] {
					t.Errorf("ListRecentMessages()[%d] = %v, want %v", i, m.Content, tt.want[i])
				}
			}
		})
	}
}
