package pipeline

import (
	"testing"
	"time"
)

func TestNewJob_Defaults(t *testing.T) {
	job := NewJob("!room:example.org", "notes.md", []byte("# hi"), 4000)

	if job.ID == "" {
		t.Error("expected a generated job ID")
	}
	if len(job.ID) != 16 {
		t.Errorf("expected 16-char hex ID, got %q", job.ID)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if job.RoomID != "!room:example.org" {
		t.Errorf("unexpected room ID %q", job.RoomID)
	}
	if string(job.FileData()) != "# hi" {
		t.Errorf("unexpected file data %q", job.FileData())
	}
	if job.PageSize() != 4000 {
		t.Errorf("expected page size 4000, got %d", job.PageSize())
	}
}

func TestNewJob_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewJob("!r:x", "a.md", nil, 100).ID
		if seen[id] {
			t.Fatalf("duplicate job ID %q", id)
		}
		seen[id] = true
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("!room:example.org", "doc.md", nil, 100)

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusDelivering, "delivering"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := NewJob("!room:example.org", "doc.md", nil, 100)
	job.AddError("page 3 send failed")
	job.AddError("page 7 send failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "page 3 send failed" {
		t.Errorf("expected first error %q, got %q", "page 3 send failed", snap.Progress.Errors[0])
	}
}

func TestJob_AddEventID(t *testing.T) {
	job := NewJob("!room:example.org", "doc.md", nil, 100)
	job.AddEventID("$evt1")
	job.AddEventID("$evt2")

	snap := job.Snapshot()
	if snap.Progress.PagesSent != 2 {
		t.Errorf("expected 2 pages sent, got %d", snap.Progress.PagesSent)
	}
	if len(snap.Progress.EventIDs) != 2 || snap.Progress.EventIDs[1] != "$evt2" {
		t.Errorf("unexpected event IDs %v", snap.Progress.EventIDs)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := NewJob("!room:example.org", "doc.md", nil, 100)
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJob_SnapshotIsolatedFromJob(t *testing.T) {
	job := NewJob("!room:example.org", "doc.md", nil, 100)
	job.AddEventID("$evt1")

	snap := job.Snapshot()
	snap.Progress.EventIDs[0] = "mutated"

	if job.Snapshot().Progress.EventIDs[0] != "$evt1" {
		t.Error("expected snapshot mutation not to affect the job")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("!room:example.org", "doc.md", nil, 100)
	store.Put(job)

	got := store.Get(job.ID)
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != job.ID {
		t.Errorf("expected ID %q, got %q", job.ID, got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := NewJob("!room:example.org", "old.md", nil, 100)
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := NewJob("!room:example.org", "new.md", nil, 100)
	store.Put(fresh)

	store.Cleanup()

	if store.Get(expired.ID) != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
