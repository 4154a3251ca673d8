package models

import "testing"

func TestRoomKeyIsOrderIndependent(t *testing.T) {
	if RoomKey("alice", "bob") != RoomKey("bob", "alice") {
		t.Fatal("room key must not depend on argument order")
	}
	if got := RoomKey("bob", "alice"); got != "alice:bob" {
		t.Fatalf("expected alice:bob, got %s", got)
	}
}

func TestRoomKeyNormalizes(t *testing.T) {
	if got := RoomKey("  Alice ", "BOB"); got != "alice:bob" {
		t.Fatalf("expected normalized key alice:bob, got %s", got)
	}
}
