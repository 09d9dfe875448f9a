package main

import (
	"fmt"
	"time"

	"github.com/mealstack/internal/config"
	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/logger"
	"github.com/mealstack/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// Demo accounts
	users := []struct {
		Email       string
		Password    string
		DisplayName string
		Phone       string
	}{
		{Email: "asha@mealstack.local", Password: "demo-pass-1", DisplayName: "Asha", Phone: "9876500001"},
		{Email: "rohan@mealstack.local", Password: "demo-pass-2", DisplayName: "Rohan", Phone: "9876500002"},
	}
	for _, u := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", u.Email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", u.Email)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Printf("Failed to hash password for %s: %v", u.Email, err)
			continue
		}
		user := models.User{
			Email:        u.Email,
			PasswordHash: string(hash),
			DisplayName:  u.DisplayName,
			Phone:        u.Phone,
			Status:       "active",
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", u.Email, err)
		} else {
			stdLog.Printf("Created user: %s", u.Email)
		}
	}

	// Menu items per meal type
	items := []models.MenuItem{
		{
			Name:        "Poha with Sev",
			Description: "Flattened rice tossed with onion, peanuts and curry leaves.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(45)),
			MealType:    constants.MealTypeBreakfast,
			ImageURL:    "https://images.unsplash.com/photo-1606491956689-2ea866880c84?w=800",
			IsActive:    true,
		},
		{
			Name:        "Masala Dosa",
			Description: "Crisp dosa with potato filling, sambar and chutney.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(70)),
			MealType:    constants.MealTypeBreakfast,
			ImageURL:    "https://images.unsplash.com/photo-1589301760014-d929f3979dbc?w=800",
			IsActive:    true,
		},
		{
			Name:        "Veg Thali",
			Description: "Two sabzis, dal, rice, four rotis, salad and pickle.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(120)),
			MealType:    constants.MealTypeLunch,
			ImageURL:    "https://images.unsplash.com/photo-1546833999-b9f581a1996d?w=800",
			IsActive:    true,
		},
		{
			Name:        "Paneer Butter Masala Meal",
			Description: "Paneer gravy with jeera rice and three butter rotis.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(160)),
			MealType:    constants.MealTypeLunch,
			ImageURL:    "https://images.unsplash.com/photo-1631452180519-c014fe946bc7?w=800",
			IsActive:    true,
		},
		{
			Name:        "Chef Special Lunch",
			Description: "Rotating chef special, menu changes daily.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(180)),
			MealType:    constants.MealTypeLunch,
			IsSpecial:   true,
			ImageURL:    "https://images.unsplash.com/photo-1504674900247-0877df9cc836?w=800",
			IsActive:    true,
		},
		{
			Name:        "Dal Khichdi Bowl",
			Description: "Comforting moong dal khichdi with ghee and papad.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(100)),
			MealType:    constants.MealTypeDinner,
			ImageURL:    "https://images.unsplash.com/photo-1596797038530-2c107229654b?w=800",
			IsActive:    true,
		},
		{
			Name:        "Roti Sabzi Combo",
			Description: "Seasonal sabzi with four rotis and dal tadka.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(110)),
			MealType:    constants.MealTypeDinner,
			ImageURL:    "https://images.unsplash.com/photo-1585937421612-70a008356fbe?w=800",
			IsActive:    true,
		},
	}
	for _, item := range items {
		var existing models.MenuItem
		if err := models.DB.Where("name = ? AND meal_type = ?", item.Name, item.MealType).First(&existing).Error; err != nil {
			if err := models.DB.Create(&item).Error; err != nil {
				stdLog.Printf("Failed to create menu item %s: %v", item.Name, err)
			} else {
				stdLog.Printf("Created menu item: %s", item.Name)
			}
		} else {
			existing.Description = item.Description
			existing.Price = item.Price
			existing.ImageURL = item.ImageURL
			existing.IsSpecial = item.IsSpecial
			existing.IsActive = item.IsActive
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update menu item %s: %v", item.Name, err)
			} else {
				stdLog.Printf("Updated menu item: %s", item.Name)
			}
		}
	}

	// Capacity rows for the full booking window
	today := time.Now()
	for i := 0; i <= constants.OrderAdvanceDays; i++ {
		date := today.AddDate(0, 0, i).Format(constants.DateLayout)
		var existing models.MealCapacity
		if err := models.DB.Where("date = ?", date).First(&existing).Error; err == nil {
			stdLog.Printf("Capacity row already exists: %s", date)
			continue
		}
		row := models.MealCapacity{
			Date:           date,
			BreakfastLimit: models.DefaultMealCapacity,
			LunchLimit:     models.DefaultMealCapacity,
			DinnerLimit:    models.DefaultMealCapacity,
		}
		if err := models.DB.Create(&row).Error; err != nil {
			stdLog.Printf("Failed to create capacity row %s: %v", date, err)
		} else {
			stdLog.Printf("Created capacity row: %s", date)
		}
	}

	fmt.Println("\nSeed data created successfully.")
	fmt.Println("Summary:")
	fmt.Printf("- %d demo users\n", len(users))
	fmt.Printf("- %d menu items across breakfast, lunch and dinner\n", len(items))
	fmt.Printf("- capacity rows for today through +%d days\n", constants.OrderAdvanceDays)
}
