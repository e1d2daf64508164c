package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"contactdash/internal/docstore"
	"contactdash/internal/fields"
	"contactdash/internal/semantic"
)

const testCSV = "First Name,Last Name,Email,Mobile\nAda,Lovelace,ada@example.com,0123456789\nLin,Qi,lin@example.com,0987654321\n"

func newTestService(t *testing.T, fake *semantic.FakeClient) (*Service, docstore.Store) {
	t.Helper()
	store := docstore.NewMemoryStore()
	fieldSvc := fields.New(store)
	require.NoError(t, fieldSvc.Seed(context.Background(), "acme"))
	if fake == nil {
		fake = &semantic.FakeClient{}
	}
	return New(store, fieldSvc, semantic.NewPredictor(fake), nil), store
}

func TestStartImportSeedsSessionFromPredictions(t *testing.T) {
	svc, _ := newTestService(t, nil)

	job, err := svc.StartImport(context.Background(), "acme", "contacts.csv", []byte(testCSV))
	require.NoError(t, err)
	require.Equal(t, StepDetectedFields, job.ActiveStep())

	entries := job.Session.Entries()
	require.Len(t, entries, 4)
	require.Equal(t, "firstName", entries[0].SuggestedHeader)
	require.Equal(t, 1.0, entries[0].Confidence)
	require.Equal(t, "lastName", entries[1].SuggestedHeader)
	require.Equal(t, "email", entries[2].SuggestedHeader)
	// "Mobile" has no exact schema match and resolves via the synonym list.
	require.Equal(t, "phone", entries[3].SuggestedHeader)

	got, err := svc.Job(job.ID)
	require.NoError(t, err)
	require.Same(t, job, got)
}

func TestStartImportRejectsEmptyFile(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.StartImport(context.Background(), "acme", "contacts.csv", nil)
	require.Error(t, err)
}

func TestJobUnknownID(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Job("import-0")
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestAdvanceMovesToMapFields(t *testing.T) {
	svc, _ := newTestService(t, nil)
	job, err := svc.StartImport(context.Background(), "acme", "contacts.csv", []byte(testCSV))
	require.NoError(t, err)

	res, err := svc.Advance(context.Background(), job.ID)
	require.NoError(t, err)
	require.True(t, res.IsValid)
	require.Equal(t, StepMapFields, job.ActiveStep())
}

func TestAdvanceBlockedByUnmappedCoreField(t *testing.T) {
	svc, _ := newTestService(t, nil)

	// No email column anywhere, so the map-fields validator must hold the
	// wizard on that step.
	csv := "First Name,Last Name,Mobile\nAda,Lovelace,0123456789\n"
	job, err := svc.StartImport(context.Background(), "acme", "contacts.csv", []byte(csv))
	require.NoError(t, err)

	_, err = svc.Advance(context.Background(), job.ID)
	require.NoError(t, err)

	res, err := svc.Advance(context.Background(), job.ID)
	require.NoError(t, err)
	require.False(t, res.IsValid)
	require.Len(t, res.UnmappedFields, 1)
	require.Equal(t, "Email", res.UnmappedFields[0].Label)
	require.Equal(t, StepMapFields, job.ActiveStep())
}

func TestCommitImportsMappedRows(t *testing.T) {
	svc, store := newTestService(t, nil)
	job, err := svc.StartImport(context.Background(), "acme", "contacts.csv", []byte(testCSV))
	require.NoError(t, err)

	summary, err := svc.Commit(context.Background(), job.ID, "importer@acme.test")
	require.NoError(t, err)
	require.Equal(t, 2, summary.Created)
	require.Zero(t, summary.Merged)
	require.Zero(t, summary.Skipped)

	docs, err := store.GetDocuments(context.Background(), "acme", docstore.CollectionContacts)
	require.NoError(t, err)
	require.Len(t, docs, 2)
}

func TestCommitRejectsInvalidMapping(t *testing.T) {
	svc, store := newTestService(t, nil)
	csv := "First Name,Mobile\nAda,0123456789\n"
	// Both lastName and email are missing, so the mapping is rejected
	// before any document write.
	job, err := svc.StartImport(context.Background(), "acme", "contacts.csv", []byte(csv))
	require.NoError(t, err)

	_, err = svc.Commit(context.Background(), job.ID, "importer@acme.test")
	require.ErrorIs(t, err, ErrMappingInvalid)

	docs, err := store.GetDocuments(context.Background(), "acme", docstore.CollectionContacts)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestCommitIsSingleShot(t *testing.T) {
	svc, _ := newTestService(t, nil)
	job, err := svc.StartImport(context.Background(), "acme", "contacts.csv", []byte(testCSV))
	require.NoError(t, err)

	first, err := svc.Commit(context.Background(), job.ID, "importer@acme.test")
	require.NoError(t, err)

	second, err := svc.Commit(context.Background(), job.ID, "importer@acme.test")
	require.ErrorIs(t, err, ErrAlreadyDone)
	require.Equal(t, first, second)
}

func TestCommitAfterRemappingColumn(t *testing.T) {
	svc, store := newTestService(t, nil)

	// "Contact" scores below the custom threshold, so the seeded mapping
	// leaves phone unmapped until the user selects it by hand.
	csv := "First Name,Last Name,Email,Contact\nAda,Lovelace,ada@example.com,0123456789\n"
	job, err := svc.StartImport(context.Background(), "acme", "contacts.csv", []byte(csv))
	require.NoError(t, err)

	_, err = svc.Commit(context.Background(), job.ID, "importer@acme.test")
	require.ErrorIs(t, err, ErrMappingInvalid)

	require.NoError(t, job.Session.SelectField(context.Background(), 3, "phone"))
	summary, err := svc.Commit(context.Background(), job.ID, "importer@acme.test")
	require.NoError(t, err)
	require.Equal(t, 1, summary.Created)

	docs, err := store.GetDocuments(context.Background(), "acme", docstore.CollectionContacts)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "0123456789", docs[0]["phone"])
}

func TestProgressEventsReachSubscribers(t *testing.T) {
	svc, _ := newTestService(t, nil)
	job, err := svc.StartImport(context.Background(), "acme", "contacts.csv", []byte(testCSV))
	require.NoError(t, err)

	ch := svc.Subscribe(job.ID)
	defer svc.Unsubscribe(job.ID, ch)

	_, err = svc.Commit(context.Background(), job.ID, "importer@acme.test")
	require.NoError(t, err)

	var stages []Stage
	var final *Event
	deadline := time.After(2 * time.Second)
	for final == nil {
		select {
		case ev := <-ch:
			stages = append(stages, ev.Stage)
			if ev.Stage == StageDone {
				final = &ev
			}
		case <-deadline:
			t.Fatalf("no done event, saw stages %v", stages)
		}
	}
	require.Equal(t, StageImporting, stages[0])
	require.NotNil(t, final.Summary)
	require.Equal(t, 2, final.Summary.Created)
}

func TestSemanticFailureFallsBackToHeuristics(t *testing.T) {
	fake := &semantic.FakeClient{Err: errors.New("model unavailable")}
	svc, _ := newTestService(t, fake)

	job, err := svc.StartImport(context.Background(), "acme", "contacts.csv", []byte(testCSV))
	require.NoError(t, err)

	// Zero-confidence fallbacks never beat the schema or heuristic scores.
	entries := job.Session.Entries()
	require.Equal(t, "firstName", entries[0].SuggestedHeader)
	require.Equal(t, "lastName", entries[1].SuggestedHeader)
	require.Equal(t, "email", entries[2].SuggestedHeader)
	require.Equal(t, "phone", entries[3].SuggestedHeader)
}

func TestSemanticPredictionWinsOnHigherConfidence(t *testing.T) {
	fake := &semantic.FakeClient{
		Response: `[{"originalHeader":"Region","suggestedHeader":"custom_territory","confidence":0.9,"isCustom":true}]`,
	}
	svc, _ := newTestService(t, fake)

	csv := "Region\nnorth\nsouth\n"
	job, err := svc.StartImport(context.Background(), "acme", "regions.csv", []byte(csv))
	require.NoError(t, err)

	entries := job.Session.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "custom_territory", entries[0].SuggestedHeader)
	require.True(t, entries[0].IsCustom)
}
