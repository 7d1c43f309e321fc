package service

import (
	"errors"
	"testing"
	"time"

	"github.com/langleague/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookOwnershipRules(t *testing.T) {
	gdb := setupTestDB(t)
	books := NewBookService(gdb)
	owner := createActor(t, gdb, "teacher", db.RoleTeacher)
	otherTeacher := createActor(t, gdb, "teacher2", db.RoleTeacher)
	student := createActor(t, gdb, "student", db.RoleStudent)

	_, err := books.Create(student, BookInput{Title: "Nope"})
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = books.Create(owner, BookInput{Title: "  "})
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	book, err := books.Create(owner, BookInput{Title: "Starter", IsPublic: true})
	require.NoError(t, err)
	require.NotNil(t, book.TeacherProfileID)
	assert.Equal(t, owner.ProfileID, *book.TeacherProfileID)

	_, err = books.Update(otherTeacher, book.ID, BookInput{Title: "Hijacked"})
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.True(t, errors.Is(books.Delete(otherTeacher, book.ID), ErrForbidden))

	updated, err := books.Update(owner, book.ID, BookInput{Title: "Starter 2", IsPublic: false})
	require.NoError(t, err)
	assert.Equal(t, "Starter 2", updated.Title)

	admin := createActor(t, gdb, "admin", db.RoleAdmin)
	updated, err = books.Update(admin, book.ID, BookInput{Title: "Starter 3"})
	require.NoError(t, err)
	assert.Equal(t, "Starter 3", updated.Title)
	assert.Equal(t, owner.ProfileID, *updated.TeacherProfileID)

	require.NoError(t, books.Delete(owner, book.ID))
	_, err = books.Get(book.ID)
	assert.True(t, errors.Is(err, ErrBookNotFound))
}

func TestBookListFilters(t *testing.T) {
	gdb := setupTestDB(t)
	books := NewBookService(gdb)
	enrollments := NewEnrollmentService(gdb)
	teacher := createActor(t, gdb, "teacher", db.RoleTeacher)
	student := createActor(t, gdb, "student", db.RoleStudent)

	public := createBook(t, gdb, teacher, "Public", true)
	createBook(t, gdb, teacher, "Private", false)
	other := createBook(t, gdb, teacher, "Other", true)

	_, err := enrollments.Enroll(student, public.ID, time.Now())
	require.NoError(t, err)

	titles := func(filter string, actor Actor) []string {
		list, err := books.List(actor, filter)
		require.NoError(t, err)
		out := make([]string, 0, len(list))
		for _, book := range list {
			out = append(out, book.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Public", "Private", "Other"}, titles(BookFilterAll, student))
	assert.ElementsMatch(t, []string{"Public", "Other"}, titles(BookFilterPublic, student))
	assert.ElementsMatch(t, []string{"Public", "Private", "Other"}, titles(BookFilterMine, teacher))
	assert.Empty(t, titles(BookFilterMine, student))
	assert.Equal(t, []string{"Public"}, titles(BookFilterEnrolled, student))
	assert.Equal(t, []string{other.Title}, titles(BookFilterNotEnrolled, student))

	newest, err := books.Newest(1)
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, "Other", newest[0].Title)
}

func TestUnitListCountsAndReorder(t *testing.T) {
	gdb := setupTestDB(t)
	units := NewUnitService(gdb)
	vocabularies := NewVocabularyService(gdb)
	grammars := NewGrammarService(gdb)
	exercises := NewExerciseService(gdb)
	teacher := createActor(t, gdb, "teacher", db.RoleTeacher)
	stranger := createActor(t, gdb, "stranger", db.RoleTeacher)
	book := createBook(t, gdb, teacher, "Starter", true)

	first, err := units.Create(teacher, book.ID, UnitInput{Title: "One"})
	require.NoError(t, err)
	second, err := units.Create(teacher, book.ID, UnitInput{Title: "Two"})
	require.NoError(t, err)
	assert.Equal(t, 0, first.OrderIndex)
	assert.Equal(t, 1, second.OrderIndex)

	_, err = units.Create(stranger, book.ID, UnitInput{Title: "Three"})
	assert.True(t, errors.Is(err, ErrForbidden))

	for _, word := range []string{"hello", "bye"} {
		_, err := vocabularies.Create(teacher, first.ID, VocabularyInput{Word: word})
		require.NoError(t, err)
	}
	_, err = grammars.Create(teacher, first.ID, GrammarInput{Title: "to be", ContentMarkdown: "**am**"})
	require.NoError(t, err)
	_, err = exercises.Create(teacher, second.ID, ExerciseInput{ExerciseType: "fill_in", ExerciseText: "I ___", CorrectAnswer: "am"})
	require.NoError(t, err)

	require.NoError(t, units.Reorder(teacher, book.ID, []uint{second.ID, 9999, first.ID}))

	list, err := units.ListByBook(book.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Two", list[0].Title)
	assert.Equal(t, int64(0), list[0].VocabularyCount)
	assert.Equal(t, int64(1), list[0].ExerciseCount)
	assert.Equal(t, "One", list[1].Title)
	assert.Equal(t, int64(2), list[1].VocabularyCount)
	assert.Equal(t, int64(1), list[1].GrammarCount)
	assert.Equal(t, 2, list[1].OrderIndex)
}

func TestGrammarRendersSanitizedHTML(t *testing.T) {
	gdb := setupTestDB(t)
	teacher := createActor(t, gdb, "teacher", db.RoleTeacher)
	book := createBook(t, gdb, teacher, "Starter", true)
	unit := createUnit(t, gdb, book.ID, "One")

	view, err := NewGrammarService(gdb).Create(teacher, unit.ID, GrammarInput{
		Title:           "to be",
		ContentMarkdown: "I **am**<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.Contains(t, view.ContentHTML, "<strong>am</strong>")
	assert.NotContains(t, view.ContentHTML, "<script>")
}

func TestExerciseCheckAndSubmit(t *testing.T) {
	gdb := setupTestDB(t)
	exercises := NewExerciseService(gdb)
	teacher := createActor(t, gdb, "teacher", db.RoleTeacher)
	student := createActor(t, gdb, "student", db.RoleStudent)
	book := createBook(t, gdb, teacher, "Starter", true)
	unit := createUnit(t, gdb, book.ID, "One")

	_, err := exercises.Create(teacher, unit.ID, ExerciseInput{ExerciseType: "MULTIPLE_CHOICE", ExerciseText: "She ___", Choices: []string{"is"}})
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = exercises.Create(teacher, unit.ID, ExerciseInput{ExerciseType: "DANCING", ExerciseText: "?"})
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	exercise, err := exercises.Create(teacher, unit.ID, ExerciseInput{
		ExerciseType:  "multiple_choice",
		ExerciseText:  "She ___ a teacher.",
		CorrectAnswer: "is",
		Choices:       []string{"am", " is ", "are", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, db.ExerciseMultipleChoice, exercise.ExerciseType)
	assert.Equal(t, []string{"am", "is", "are"}, DecodeChoices(*exercise))

	assert.Equal(t, AnswerCorrect, exercises.CheckAnswer(exercise.ID, "  IS "))
	assert.Equal(t, AnswerWrong, exercises.CheckAnswer(exercise.ID, "are"))
	assert.Equal(t, AnswerWrong, exercises.CheckAnswer(9999, "is"))

	result, err := exercises.Submit(student, exercise.ID, "Is", time.Now())
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 100, result.Score)

	result, err = exercises.Submit(student, exercise.ID, "am", time.Now())
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, 0, result.Score)

	_, err = exercises.Submit(student, 9999, "am", time.Now())
	assert.True(t, errors.Is(err, ErrExerciseNotFound))
}

func TestVocabularyUpsertByWord(t *testing.T) {
	gdb := setupTestDB(t)
	vocabularies := NewVocabularyService(gdb)
	teacher := createActor(t, gdb, "teacher", db.RoleTeacher)
	book := createBook(t, gdb, teacher, "Starter", true)
	unit := createUnit(t, gdb, book.ID, "One")

	created, err := vocabularies.Upsert(nil, unit.ID, VocabularyInput{Word: "hello", Meaning: "你好"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = vocabularies.Upsert(nil, unit.ID, VocabularyInput{Word: "hello", Meaning: "喂"})
	require.NoError(t, err)
	assert.False(t, created)

	items, err := vocabularies.ListByUnit(unit.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "喂", items[0].Meaning)
}

func TestDeletingContentKeepsStudentRecords(t *testing.T) {
	gdb := setupTestDB(t)
	teacher := createActor(t, gdb, "teacher", db.RoleTeacher)
	student := createActor(t, gdb, "student", db.RoleStudent)
	book := createBook(t, gdb, teacher, "Starter", true)
	first := createUnit(t, gdb, book.ID, "One")
	second := createUnit(t, gdb, book.ID, "Two")
	require.NoError(t, gdb.Create(&db.Vocabulary{UnitID: first.ID, Word: "hello"}).Error)

	progresses := NewProgressService(gdb)
	notes := NewNoteService(gdb)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for _, unit := range []db.Unit{first, second} {
		_, err := progresses.UpdateSectionProgress(student, unit.ID, "VOCABULARY", now)
		require.NoError(t, err)
		_, err = notes.Save(student, unit.ID, "remember this", now)
		require.NoError(t, err)
	}

	countFor := func(model interface{}, unitID uint) int64 {
		var n int64
		require.NoError(t, gdb.Model(model).Where("unit_id = ?", unitID).Count(&n).Error)
		return n
	}

	require.NoError(t, NewUnitService(gdb).Delete(teacher, first.ID))
	assert.Equal(t, int64(0), countFor(&db.Vocabulary{}, first.ID))
	assert.Equal(t, int64(1), countFor(&db.Progress{}, first.ID))
	assert.Equal(t, int64(1), countFor(&db.Note{}, first.ID))

	var deleted db.Unit
	require.NoError(t, gdb.Unscoped().First(&deleted, first.ID).Error)
	assert.True(t, deleted.DeletedAt.Valid)

	require.NoError(t, NewBookService(gdb).Delete(teacher, book.ID))
	assert.Equal(t, int64(1), countFor(&db.Progress{}, second.ID))
	assert.Equal(t, int64(1), countFor(&db.Note{}, second.ID))

	mine, err := progresses.ListMine(student)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
