package seed

import (
	"fmt"
	"io"
	"time"

	"github.com/langleague/internal/db"
	"github.com/langleague/internal/service"
	"gorm.io/gorm"
)

// Account 是示例账号
type Account struct {
	Username string
	Password string
	Role     string
}

// DefaultAccounts 返回示例账号
func DefaultAccounts() []Account {
	return []Account{
		{Username: "admin", Password: "admin123", Role: db.RoleAdmin},
		{Username: "teacher", Password: "teacher123", Role: db.RoleTeacher},
		{Username: "student", Password: "student123", Role: db.RoleStudent},
	}
}

// Run 写入示例账号与一本公开教材；已存在的数据会被跳过
func Run(gdb *gorm.DB, out io.Writer, now time.Time) error {
	fmt.Fprintln(out, "开始生成示例数据...")

	for _, account := range DefaultAccounts() {
		if err := db.EnsureUser(gdb, account.Username, account.Password, account.Role); err != nil {
			return fmt.Errorf("create %s: %w", account.Username, err)
		}
	}
	fmt.Fprintln(out, "✅ 示例账号就绪")

	var count int64
	if err := gdb.Model(&db.Book{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if count > 0 {
		fmt.Fprintln(out, "教材已存在，跳过创建")
		return nil
	}

	teacher, err := service.NewAuthService(gdb, "", 0).ActorForUser(userID(gdb, "teacher"))
	if err != nil {
		return err
	}

	if err := createSampleBook(gdb, teacher); err != nil {
		return err
	}
	fmt.Fprintln(out, "✅ 示例教材创建完成")

	student, err := service.NewAuthService(gdb, "", 0).ActorForUser(userID(gdb, "student"))
	if err != nil {
		return err
	}
	books, err := service.NewBookService(gdb).List(student, service.BookFilterPublic)
	if err != nil {
		return err
	}
	for _, book := range books {
		if _, err := service.NewEnrollmentService(gdb).Enroll(student, book.ID, now); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "示例数据生成完成！")
	for _, account := range DefaultAccounts() {
		fmt.Fprintf(out, "%s: %s (密码: %s)\n", account.Role, account.Username, account.Password)
	}
	return nil
}

func userID(gdb *gorm.DB, username string) uint {
	var user db.User
	gdb.Select("id").Where("username = ?", username).First(&user)
	return user.ID
}

func createSampleBook(gdb *gorm.DB, teacher service.Actor) error {
	book, err := service.NewBookService(gdb).Create(teacher, service.BookInput{
		Title:       "English Starter",
		Description: "面向初学者的日常英语教材",
		IsPublic:    true,
	})
	if err != nil {
		return err
	}

	units := service.NewUnitService(gdb)
	vocabularies := service.NewVocabularyService(gdb)
	grammars := service.NewGrammarService(gdb)
	exercises := service.NewExerciseService(gdb)

	for _, sample := range sampleUnits() {
		unit, err := units.Create(teacher, book.ID, service.UnitInput{Title: sample.title, Summary: sample.summary})
		if err != nil {
			return err
		}
		for i, word := range sample.words {
			word.OrderIndex = i
			if _, err := vocabularies.Create(teacher, unit.ID, word); err != nil {
				return err
			}
		}
		if _, err := grammars.Create(teacher, unit.ID, sample.grammar); err != nil {
			return err
		}
		for _, exercise := range sample.exercises {
			if _, err := exercises.Create(teacher, unit.ID, exercise); err != nil {
				return err
			}
		}
	}
	return nil
}

type sampleUnit struct {
	title     string
	summary   string
	words     []service.VocabularyInput
	grammar   service.GrammarInput
	exercises []service.ExerciseInput
}

func sampleUnits() []sampleUnit {
	return []sampleUnit{
		{
			title:   "Greetings",
			summary: "打招呼与自我介绍",
			words: []service.VocabularyInput{
				{Word: "hello", Phonetic: "/həˈləʊ/", Meaning: "你好", Example: "Hello, my name is Anna."},
				{Word: "goodbye", Phonetic: "/ˌɡʊdˈbaɪ/", Meaning: "再见", Example: "Goodbye, see you tomorrow."},
				{Word: "thanks", Phonetic: "/θæŋks/", Meaning: "谢谢", Example: "Thanks for your help."},
			},
			grammar: service.GrammarInput{
				Title:           "The verb *to be*",
				ContentMarkdown: "## am / is / are\n\n- I **am** a student.\n- She **is** a teacher.\n- They **are** friends.",
				ExampleUsage:    "I am Anna.",
			},
			exercises: []service.ExerciseInput{
				{ExerciseType: "FILL_IN", ExerciseText: "I ___ a student.", CorrectAnswer: "am"},
				{ExerciseType: "MULTIPLE_CHOICE", ExerciseText: "She ___ a teacher.", CorrectAnswer: "is", Choices: []string{"am", "is", "are"}},
			},
		},
		{
			title:   "Numbers",
			summary: "数字 1-10",
			words: []service.VocabularyInput{
				{Word: "one", Phonetic: "/wʌn/", Meaning: "一"},
				{Word: "two", Phonetic: "/tuː/", Meaning: "二"},
				{Word: "three", Phonetic: "/θriː/", Meaning: "三"},
			},
			grammar: service.GrammarInput{
				Title:           "Plural nouns",
				ContentMarkdown: "名词复数一般在词尾加 **-s**：\n\n| 单数 | 复数 |\n| --- | --- |\n| book | books |\n| cat | cats |",
			},
			exercises: []service.ExerciseInput{
				{ExerciseType: "WRITING", ExerciseText: "Write the number 3 in English.", CorrectAnswer: "three"},
			},
		},
	}
}
