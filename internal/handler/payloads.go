package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/langleague/internal/db"
	"github.com/langleague/internal/service"
)

func userPayload(user db.User) gin.H {
	payload := gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	}
	if user.Profile != nil {
		payload["profile"] = profilePayload(*user.Profile)
	}
	return payload
}

func profilePayload(profile db.UserProfile) gin.H {
	return gin.H{
		"id":               profile.ID,
		"userId":           profile.UserID,
		"streakCount":      profile.StreakCount,
		"longestStreak":    profile.LongestStreak,
		"lastLearningDate": profile.LastLearningDate,
		"bio":              profile.Bio,
		"theme":            profile.Theme,
	}
}

func progressPayload(progress db.Progress) gin.H {
	return gin.H{
		"id":                   progress.ID,
		"userProfileId":        progress.UserProfileID,
		"unitId":               progress.UnitID,
		"isCompleted":          progress.IsCompleted,
		"isBookmarked":         progress.IsBookmarked,
		"score":                progress.Score,
		"completionPercentage": progress.CompletionPercentage,
		"isVocabularyFinished": progress.IsVocabularyFinished,
		"isGrammarFinished":    progress.IsGrammarFinished,
		"isExerciseFinished":   progress.IsExerciseFinished,
		"lastAccessedAt":       progress.LastAccessedAt,
		"createdAt":            progress.CreatedAt,
		"updatedAt":            progress.UpdatedAt,
	}
}

func progressListPayload(items []db.Progress) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, progressPayload(item))
	}
	return out
}

func bookPayload(book db.Book) gin.H {
	return gin.H{
		"id":               book.ID,
		"title":            book.Title,
		"description":      book.Description,
		"coverImageUrl":    book.CoverImageURL,
		"isPublic":         book.IsPublic,
		"teacherProfileId": book.TeacherProfileID,
		"createdAt":        book.CreatedAt,
		"updatedAt":        book.UpdatedAt,
	}
}

func bookListPayload(books []db.Book) []gin.H {
	out := make([]gin.H, 0, len(books))
	for _, book := range books {
		out = append(out, bookPayload(book))
	}
	return out
}

func unitPayload(unit db.Unit) gin.H {
	return gin.H{
		"id":         unit.ID,
		"bookId":     unit.BookID,
		"title":      unit.Title,
		"summary":    unit.Summary,
		"orderIndex": unit.OrderIndex,
	}
}

func unitSummaryPayload(summary service.UnitSummary) gin.H {
	payload := unitPayload(summary.Unit)
	payload["vocabularyCount"] = summary.VocabularyCount
	payload["grammarCount"] = summary.GrammarCount
	payload["exerciseCount"] = summary.ExerciseCount
	return payload
}

func vocabularyPayload(item db.Vocabulary) gin.H {
	return gin.H{
		"id":         item.ID,
		"unitId":     item.UnitID,
		"word":       item.Word,
		"phonetic":   item.Phonetic,
		"meaning":    item.Meaning,
		"example":    item.Example,
		"imageUrl":   item.ImageURL,
		"orderIndex": item.OrderIndex,
	}
}

func grammarPayload(item service.GrammarView) gin.H {
	return gin.H{
		"id":              item.ID,
		"unitId":          item.UnitID,
		"title":           item.Title,
		"contentMarkdown": item.ContentMarkdown,
		"contentHtml":     item.ContentHTML,
		"exampleUsage":    item.ExampleUsage,
		"orderIndex":      item.OrderIndex,
	}
}

// exercisePayload 默认不返回正确答案，仅教材创建者可见
func exercisePayload(item db.Exercise, withAnswer bool) gin.H {
	payload := gin.H{
		"id":           item.ID,
		"unitId":       item.UnitID,
		"exerciseType": item.ExerciseType,
		"exerciseText": item.ExerciseText,
		"choices":      service.DecodeChoices(item),
		"audioUrl":     item.AudioURL,
		"imageUrl":     item.ImageURL,
		"orderIndex":   item.OrderIndex,
	}
	if withAnswer {
		payload["correctAnswer"] = item.CorrectAnswer
	}
	return payload
}

func enrollmentPayload(item db.Enrollment) gin.H {
	return gin.H{
		"id":            item.ID,
		"userProfileId": item.UserProfileID,
		"bookId":        item.BookID,
		"status":        item.Status,
		"enrolledAt":    item.EnrolledAt,
	}
}

func notePayload(item service.NoteView) gin.H {
	return gin.H{
		"id":          item.ID,
		"unitId":      item.UnitID,
		"content":     item.Content,
		"contentHtml": item.ContentHTML,
		"createdAt":   item.CreatedAt,
		"updatedAt":   item.UpdatedAt,
	}
}

func reviewPayload(item db.BookReview) gin.H {
	return gin.H{
		"id":            item.ID,
		"userProfileId": item.UserProfileID,
		"bookId":        item.BookID,
		"rating":        item.Rating,
		"comment":       item.Comment,
		"updatedAt":     item.UpdatedAt,
	}
}

func sessionPayload(item db.StudySession) gin.H {
	return gin.H{
		"id":              item.ID,
		"unitId":          item.UnitID,
		"startAt":         item.StartAt,
		"endAt":           item.EndAt,
		"durationSeconds": item.DurationSeconds,
	}
}

func achievementPayload(item db.Achievement) gin.H {
	return gin.H{
		"id":        item.ID,
		"code":      item.Code,
		"milestone": item.Milestone,
		"awardedAt": item.AwardedAt,
	}
}

func notificationPayload(item db.Notification) gin.H {
	return gin.H{
		"id":        item.ID,
		"kind":      item.Kind,
		"title":     item.Title,
		"body":      item.Body,
		"isRead":    item.IsRead,
		"createdAt": item.CreatedAt,
	}
}
