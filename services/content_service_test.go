package services

import (
	"testing"

	"course-folder-api/jsondoc"
	"course-folder-api/models"
)

func TestSaveContentWritesOneSnapshotPerSave(t *testing.T) {
	steps := []*queryStep{
		queryExpect(`SELECT \* FROM .course_folders. WHERE folder_id = \?`, folderColumns,
			folderRow(models.StatusDraft, `{"courseOutline": "Week plan"}`)),
		execExpect(`INSERT INTO .content_snapshots.`, 1),
		execExpect(`UPDATE .course_folders. SET`, 1),
	}
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	patch := mustDoc(t, `{"referenceBooks": ["Algorithms, 4th ed."]}`)
	service := NewContentService(gormDB)
	folder, err := service.SaveContent(1, 3, "", patch)
	if err != nil {
		t.Fatalf("SaveContent failed: %v", err)
	}
	if folder.Content.Val("courseOutline") != "Week plan" {
		t.Error("merge should keep existing keys")
	}
	if _, ok := folder.Content.Get("referenceBooks"); !ok {
		t.Error("merge should add the patched key")
	}
	// Exactly one snapshot insert is scripted; a second write, or a save
	// that skips the snapshot, fails the expectations.
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSaveContentDetachesFromCallerPayload(t *testing.T) {
	steps := []*queryStep{
		queryExpect(`SELECT \* FROM .course_folders. WHERE folder_id = \?`, folderColumns,
			folderRow(models.StatusDraft, `{}`)),
		execExpect(`INSERT INTO .content_snapshots.`, 1),
		execExpect(`UPDATE .course_folders. SET`, 1),
	}
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	patch := mustDoc(t, `{"notes": {"week1": "draft"}}`)
	service := NewContentService(gormDB)
	folder, err := service.SaveContent(1, 3, "notes", patch)
	if err != nil {
		t.Fatalf("SaveContent failed: %v", err)
	}

	inner, ok := jsondoc.AsObject(patch.Val("notes"))
	if !ok {
		t.Fatal("patch should carry the notes object")
	}
	inner.Set("week1", "changed after save")

	saved, ok := jsondoc.AsObject(folder.Content.Val("notes"))
	if !ok {
		t.Fatal("folder content should carry the notes section")
	}
	if saved.Val("week1") != "draft" {
		t.Errorf("saved content aliases the caller's payload: week1 = %v", saved.Val("week1"))
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}
