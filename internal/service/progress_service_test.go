package service

import (
	"errors"
	"testing"
	"time"

	"github.com/langleague/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProgressFixture(t *testing.T) (*ProgressService, Actor, db.Unit) {
	t.Helper()
	gdb := setupTestDB(t)

	teacher := createActor(t, gdb, "teacher", db.RoleTeacher)
	student := createActor(t, gdb, "student", db.RoleStudent)
	book := createBook(t, gdb, teacher, "English Starter", true)
	unit := createUnit(t, gdb, book.ID, "Greetings")

	return NewProgressService(gdb), student, unit
}

func TestUpdateSectionProgressAllSectionsInAnyOrder(t *testing.T) {
	orders := [][]string{
		{"VOCABULARY", "GRAMMAR", "EXERCISE"},
		{"exercise", "vocabulary", "grammar"},
		{"Grammar", "Exercise", "Vocabulary"},
	}

	for _, order := range orders {
		t.Run(order[0], func(t *testing.T) {
			svc, student, unit := setupProgressFixture(t)
			now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

			var progress *db.Progress
			for i, section := range order {
				var err error
				progress, err = svc.UpdateSectionProgress(student, unit.ID, section, now.Add(time.Duration(i)*time.Minute))
				require.NoError(t, err)
			}

			assert.Equal(t, 100, progress.CompletionPercentage)
			assert.True(t, progress.IsCompleted)
			assert.True(t, progress.IsVocabularyFinished)
			assert.True(t, progress.IsGrammarFinished)
			assert.True(t, progress.IsExerciseFinished)
		})
	}
}

func TestUpdateSectionProgressFreshRow(t *testing.T) {
	svc, student, unit := setupProgressFixture(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	progress, err := svc.UpdateSectionProgress(student, unit.ID, "vocabulary", now)
	require.NoError(t, err)

	assert.True(t, progress.IsVocabularyFinished)
	assert.False(t, progress.IsGrammarFinished)
	assert.Equal(t, 33, progress.CompletionPercentage)
	assert.False(t, progress.IsCompleted)
	require.NotNil(t, progress.LastAccessedAt)
	assert.True(t, progress.LastAccessedAt.Equal(now))
}

func TestUpdateSectionProgressIsIdempotentPerSection(t *testing.T) {
	svc, student, unit := setupProgressFixture(t)
	now := time.Now()

	first, err := svc.UpdateSectionProgress(student, unit.ID, "GRAMMAR", now)
	require.NoError(t, err)
	second, err := svc.UpdateSectionProgress(student, unit.ID, "GRAMMAR", now.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 33, second.CompletionPercentage)
	assert.False(t, second.IsCompleted)
}

func TestUpdateSectionProgressRejectsUnknownSection(t *testing.T) {
	svc, student, unit := setupProgressFixture(t)

	_, err := svc.UpdateSectionProgress(student, unit.ID, "AUDIO", time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	var count int64
	require.NoError(t, svc.db.Model(&db.Progress{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateSectionProgressUnknownSectionLeavesExistingRow(t *testing.T) {
	svc, student, unit := setupProgressFixture(t)

	before, err := svc.UpdateSectionProgress(student, unit.ID, "VOCABULARY", time.Now())
	require.NoError(t, err)

	_, err = svc.UpdateSectionProgress(student, unit.ID, "AUDIO", time.Now().Add(time.Hour))
	require.Error(t, err)

	after, err := svc.GetForUnit(student, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, before.CompletionPercentage, after.CompletionPercentage)
	assert.True(t, before.LastAccessedAt.Equal(*after.LastAccessedAt))
}

func TestUpdateSectionProgressMissingUnitOrProfile(t *testing.T) {
	svc, student, _ := setupProgressFixture(t)

	_, err := svc.UpdateSectionProgress(student, 9999, "VOCABULARY", time.Now())
	assert.True(t, errors.Is(err, ErrUnitNotFound))

	_, err = svc.UpdateSectionProgress(Actor{UserID: 9999, Role: db.RoleStudent}, 1, "VOCABULARY", time.Now())
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}

func TestToggleBookmark(t *testing.T) {
	svc, student, unit := setupProgressFixture(t)
	now := time.Now()

	created, err := svc.ToggleBookmark(student, unit.ID, now)
	require.NoError(t, err)
	assert.True(t, created.IsBookmarked)
	assert.Zero(t, created.CompletionPercentage)
	assert.False(t, created.IsCompleted)

	toggled, err := svc.ToggleBookmark(student, unit.ID, now)
	require.NoError(t, err)
	assert.Equal(t, created.ID, toggled.ID)
	assert.False(t, toggled.IsBookmarked)

	again, err := svc.ToggleBookmark(student, unit.ID, now)
	require.NoError(t, err)
	assert.True(t, again.IsBookmarked)

	bookmarked, err := svc.ListBookmarked(student)
	require.NoError(t, err)
	assert.Len(t, bookmarked, 1)
}

func TestTrackUnitAccessKeepsCompletionFields(t *testing.T) {
	svc, student, unit := setupProgressFixture(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.UpdateSectionProgress(student, unit.ID, "EXERCISE", start)
	require.NoError(t, err)

	later := start.Add(2 * time.Hour)
	progress, err := svc.TrackUnitAccess(student, unit.ID, later)
	require.NoError(t, err)

	assert.True(t, progress.IsExerciseFinished)
	assert.Equal(t, 33, progress.CompletionPercentage)
	assert.True(t, progress.LastAccessedAt.Equal(later))

	recent, err := svc.MostRecentlyAccessed(student)
	require.NoError(t, err)
	assert.Equal(t, progress.ID, recent.ID)
}

func TestCompleteUnitLeavesPercentageUntouched(t *testing.T) {
	svc, student, unit := setupProgressFixture(t)

	progress, err := svc.CompleteUnit(student, unit.ID, time.Now())
	require.NoError(t, err)

	assert.True(t, progress.IsCompleted)
	assert.Equal(t, 0, progress.CompletionPercentage)
}

func TestMostRecentlyAccessedWithoutRows(t *testing.T) {
	svc, student, _ := setupProgressFixture(t)

	_, err := svc.MostRecentlyAccessed(student)
	assert.True(t, errors.Is(err, ErrProgressNotFound))
}

func TestProgressDeleteRequiresAdmin(t *testing.T) {
	svc, student, unit := setupProgressFixture(t)
	admin := createActor(t, svc.db, "root", db.RoleAdmin)

	progress, err := svc.TrackUnitAccess(student, unit.ID, time.Now())
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.Delete(student, progress.ID), ErrForbidden))
	require.NoError(t, svc.Delete(admin, progress.ID))
	assert.True(t, errors.Is(svc.Delete(admin, progress.ID), ErrProgressNotFound))
}

func TestSystemCompletionRate(t *testing.T) {
	svc, student, unit := setupProgressFixture(t)

	rate, err := svc.SystemCompletionRate()
	require.NoError(t, err)
	assert.Equal(t, 0, rate)

	other := createUnit(t, svc.db, unit.BookID, "Numbers")
	third := createUnit(t, svc.db, unit.BookID, "Colors")

	_, err = svc.CompleteUnit(student, unit.ID, time.Now())
	require.NoError(t, err)
	_, err = svc.TrackUnitAccess(student, other.ID, time.Now())
	require.NoError(t, err)
	_, err = svc.TrackUnitAccess(student, third.ID, time.Now())
	require.NoError(t, err)

	rate, err = svc.SystemCompletionRate()
	require.NoError(t, err)
	assert.Equal(t, 33, rate)

	_, err = svc.CompleteUnit(student, other.ID, time.Now())
	require.NoError(t, err)

	rate, err = svc.SystemCompletionRate()
	require.NoError(t, err)
	assert.Equal(t, 67, rate)
}

func TestProgressTimestampsFollowCallerClock(t *testing.T) {
	svc, student, unit := setupProgressFixture(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	progress, err := svc.UpdateSectionProgress(student, unit.ID, "vocabulary", now)
	require.NoError(t, err)
	assert.True(t, progress.CreatedAt.Equal(now))
	assert.True(t, progress.UpdatedAt.Equal(now))

	later := now.Add(48 * time.Hour)
	progress, err = svc.ToggleBookmark(student, unit.ID, later)
	require.NoError(t, err)
	assert.True(t, progress.UpdatedAt.Equal(later))

	stored, err := svc.GetForUnit(student, unit.ID)
	require.NoError(t, err)
	assert.True(t, stored.CreatedAt.Equal(now))
	assert.True(t, stored.UpdatedAt.Equal(later))
}

func TestListMineOrdersByCallerClock(t *testing.T) {
	svc, student, unit := setupProgressFixture(t)
	other := createUnit(t, svc.db, unit.BookID, "Farewells")
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.TrackUnitAccess(student, other.ID, base.Add(2*time.Hour))
	require.NoError(t, err)
	_, err = svc.TrackUnitAccess(student, unit.ID, base)
	require.NoError(t, err)

	mine, err := svc.ListMine(student)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, other.ID, mine[0].UnitID)
	assert.Equal(t, unit.ID, mine[1].UnitID)
}
