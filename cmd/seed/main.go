package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/Mehtab-21/CareConnect-Backend/internal/store"
)

// roster is the demo provider directory. InsertProvider skips rows whose
// name already exists, so the command is safe to re-run.
var roster = []store.Provider{
	{
		Name:      "Dr. Sarah Lee",
		Specialty: "Dermatology",
		Facility:  "Pine Street Medical Center",
		City:      "Seattle",
		Zipcode:   "98101",
		Languages: []string{"English", "Korean"},
		Insurance: []string{"Aetna", "Blue Cross", "Medicare"},
		Availability: map[string]string{
			"Monday":   "09:00-17:00",
			"Tuesday":  "09:00-17:00",
			"Thursday": "10:00-18:00",
			"Friday":   "09:00-15:00",
		},
		ConsultationType: "In-person",
	},
	{
		Name:      "Dr. Marcus Hayes",
		Specialty: "Cardiology",
		Facility:  "Harborview Heart Institute",
		City:      "Seattle",
		Zipcode:   "98104",
		Languages: []string{"English"},
		Insurance: []string{"Cigna", "United", "Medicare"},
		Availability: map[string]string{
			"Monday":    "08:00-16:00",
			"Wednesday": "08:00-16:00",
			"Friday":    "08:00-12:00",
		},
		ConsultationType: "In-person",
	},
	{
		Name:      "Dr. Priya Raman",
		Specialty: "Pediatrics",
		Facility:  "Lakeside Children's Clinic",
		City:      "Bellevue",
		Zipcode:   "98004",
		Languages: []string{"English", "Hindi", "Tamil"},
		Insurance: []string{"Aetna", "Kaiser", "Premera"},
		Availability: map[string]string{
			"Tuesday":   "09:00-17:00",
			"Wednesday": "09:00-17:00",
			"Thursday":  "09:00-17:00",
		},
		ConsultationType: "In-person",
	},
	{
		Name:      "Dr. Elena Vasquez",
		Specialty: "Dermatology",
		Facility:  "Midtown Skin and Wellness",
		City:      "New York",
		Zipcode:   "10016",
		Languages: []string{"English", "Spanish"},
		Insurance: []string{"Blue Cross", "Oscar", "United"},
		Availability: map[string]string{
			"Monday":   "10:00-18:00",
			"Tuesday":  "10:00-18:00",
			"Saturday": "09:00-13:00",
		},
		ConsultationType: "In-person",
	},
	{
		Name:      "Dr. James Okafor",
		Specialty: "Family Medicine",
		Facility:  "CareConnect Virtual Clinic",
		City:      "",
		Zipcode:   "",
		Languages: []string{"English", "Igbo"},
		Insurance: []string{"Aetna", "Cigna", "Medicaid", "Medicare"},
		Availability: map[string]string{
			"Monday":    "07:00-19:00",
			"Tuesday":   "07:00-19:00",
			"Wednesday": "07:00-19:00",
			"Thursday":  "07:00-19:00",
			"Friday":    "07:00-19:00",
		},
		ConsultationType: "Telehealth",
	},
	{
		Name:      "Dr. Hannah Cohen",
		Specialty: "Neurology",
		Facility:  "Union Square Neurology Group",
		City:      "San Francisco",
		Zipcode:   "94108",
		Languages: []string{"English", "Hebrew"},
		Insurance: []string{"Blue Shield", "Kaiser", "Medicare"},
		Availability: map[string]string{
			"Wednesday": "09:00-17:00",
			"Thursday":  "09:00-17:00",
			"Friday":    "09:00-17:00",
		},
		ConsultationType: "In-person",
	},
}

func main() {
	_ = godotenv.Load()

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	st := store.New(pool)

	for i := range roster {
		if err := st.InsertProvider(ctx, nil, &roster[i]); err != nil {
			log.Fatalf("seed provider %q: %v", roster[i].Name, err)
		}
		log.Printf("seeded provider %s (%s)", roster[i].Name, roster[i].Specialty)
	}

	log.Printf("seed complete: %d providers", len(roster))
}
