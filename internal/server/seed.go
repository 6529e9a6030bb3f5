package server

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/podiumhq/podium/internal/models"
)

// ensureDefaultEvents creates the three stock event categories and the
// default judging rubric on an empty database.
func ensureDefaultEvents(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Event{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count events: %w", err)
	}
	if count == 0 {
		events := []models.Event{
			{Name: "Debate", NameNepali: "वाद-विवाद"},
			{Name: "Presentation", NameNepali: "प्रस्तुति"},
			{Name: "Extempore", NameNepali: "आशुभाषण"},
		}
		for i := range events {
			if err := db.Create(&events[i]).Error; err != nil {
				return fmt.Errorf("failed to seed event %s: %w", events[i].Name, err)
			}
		}
	}

	if err := db.Model(&models.JudgingCriteria{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count judging criteria: %w", err)
	}
	if count == 0 {
		criteria := []models.JudgingCriteria{
			{Name: "Content", NameNepali: "विषयवस्तु", MaxPoints: 30, JudgeType: models.JudgeTypeContent},
			{Name: "Style and Delivery", NameNepali: "शैली र प्रस्तुति", MaxPoints: 30, JudgeType: models.JudgeTypeStyleDelivery},
			{Name: "Language", NameNepali: "भाषा", MaxPoints: 20, JudgeType: models.JudgeTypeLanguage},
			{Name: "Overall Impression", NameNepali: "समग्र प्रभाव", MaxPoints: 20, JudgeType: models.JudgeTypeOverall},
		}
		for i := range criteria {
			if err := db.Create(&criteria[i]).Error; err != nil {
				return fmt.Errorf("failed to seed criteria %s: %w", criteria[i].Name, err)
			}
		}
	}

	return nil
}
