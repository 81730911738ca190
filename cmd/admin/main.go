package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"resumebuilder/internal/auth"
	"resumebuilder/internal/config"
	"resumebuilder/internal/database"
)

func main() {
	var (
		username = flag.String("username", "", "create a user with this name (optional)")
		paid     = flag.Bool("paid", false, "mark the created user as a pro-plan user")
		seed     = flag.Bool("seed", true, "seed the template catalog and FAQ content")
	)
	flag.Parse()

	cfg := config.MustLoad()

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	if err := database.EnsureIndexes(db); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}

	if *seed {
		if err := seedTemplates(db); err != nil {
			log.Fatalf("seed templates: %v", err)
		}
		if err := seedFaqs(db); err != nil {
			log.Fatalf("seed faqs: %v", err)
		}
		log.Println("catalog and faq content seeded")
	}

	if u := strings.TrimSpace(*username); u != "" {
		if err := createUser(db, u, *paid); err != nil {
			log.Fatalf("create user: %v", err)
		}
	}
}

func seedTemplates(db *gorm.DB) error {
	templates := []database.ResumeTemplate{
		{Key: "classic", Name: "Classic", Description: "A traditional single-column layout.", Tier: "free", IsActive: true, IsDefault: true},
		{Key: "modern", Name: "Modern", Description: "A clean two-column layout with accent color.", Tier: "free", IsActive: true},
		{Key: "minimal", Name: "Minimal", Description: "Whitespace-heavy layout for senior roles.", Tier: "pro", IsActive: true},
		{Key: "timeline", Name: "Timeline", Description: "Experience rendered as a vertical timeline.", Tier: "pro", IsActive: true},
	}

	for _, template := range templates {
		var existing database.ResumeTemplate
		err := db.Where("key = ?", template.Key).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&template).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			// Refresh editorial fields, leave tier and default flags alone
			// so manual catalog changes survive reseeding.
			if err := db.Model(&existing).Updates(map[string]any{
				"name":        template.Name,
				"description": template.Description,
				"is_active":   template.IsActive,
			}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedFaqs(db *gorm.DB) error {
	faqs := []database.Faq{
		{Audience: "user", Category: "getting-started", Question: "How many resumes can I create?", Answer: "As many as you like. Each resume keeps its own sections, items and template choice.", IsPublished: true, SortOrder: 1},
		{Audience: "user", Category: "getting-started", Question: "What does the default resume do?", Answer: "The default resume is the one shown on your dashboard and used when the parent application links to your profile.", IsPublished: true, SortOrder: 2},
		{Audience: "user", Category: "templates", Question: "Why is a template locked?", Answer: "Templates marked pro require a paid plan. Your existing resumes keep rendering with their current template either way.", IsPublished: true, SortOrder: 3},
		{Audience: "user", Category: "editing", Question: "Why was my pasted text changed?", Answer: "Invisible characters and unusual dashes are removed before saving so printed output stays clean.", IsPublished: true, SortOrder: 4},
	}

	for _, faq := range faqs {
		var existing database.Faq
		err := db.Where("audience = ? AND category = ? AND question = ?", faq.Audience, faq.Category, faq.Question).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&faq).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := db.Model(&existing).Updates(map[string]any{
				"answer":       faq.Answer,
				"is_published": faq.IsPublished,
				"sort_order":   faq.SortOrder,
			}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func createUser(db *gorm.DB, username string, paid bool) error {
	var existing database.User
	switch err := db.Where("username = ?", username).First(&existing).Error; {
	case err == nil:
		return fmt.Errorf("user %q already exists", username)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return err
	}

	password, err := generateRandomPassword(24)
	if err != nil {
		return fmt.Errorf("generate password: %w", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := database.User{
		Username:     username,
		PasswordHash: hashed,
		IsPaid:       paid,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	fmt.Printf("created user %q (id=%d, paid=%v)\n", username, user.ID, paid)
	fmt.Printf("initial password: %s\n", password)
	return nil
}

func generateRandomPassword(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:length], nil
}
