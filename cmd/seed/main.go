package main

import (
	"context"
	"fmt"
	"log"

	"spacehub/internal/shared/config"
	"spacehub/internal/shared/database"
	"spacehub/internal/spaces"
	"spacehub/internal/users"

	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting SpaceHub database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed. The database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"booking_transitions",
		"bookings",
		"rooms",
		"spaces",
		"users",
	}

	pg := s.db.GetPostgreSQL()
	for _, table := range tables {
		if err := pg.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) SeedAll() error {
	seededUsers, err := s.seedUsers()
	if err != nil {
		return err
	}
	return s.seedSpaces(seededUsers)
}

type seedUser struct {
	FirstName string
	LastName  string
	Email     string
	Role      users.Role
}

func (s *Seeder) seedUsers() (map[string]*users.User, error) {
	pg := s.db.GetPostgreSQL()

	// Everyone gets the same throwaway password for local testing.
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	seeds := []seedUser{
		{"Admin", "User", "admin@spacehub.dev", users.RoleAdmin},
		{"Olivia", "Chen", "olivia@spacehub.dev", users.RoleOwner},
		{"Marcus", "Reed", "marcus@spacehub.dev", users.RoleOwner},
		{"Priya", "Nair", "priya@example.com", users.RoleUser},
		{"Daniel", "Okafor", "daniel@example.com", users.RoleUser},
		{"Sofia", "Lindqvist", "sofia@example.com", users.RoleUser},
	}

	out := make(map[string]*users.User, len(seeds))
	for _, seed := range seeds {
		user := &users.User{
			FirstName: seed.FirstName,
			LastName:  seed.LastName,
			Email:     seed.Email,
			Password:  string(hashed),
			Role:      seed.Role,
			IsActive:  true,
		}
		if err := pg.WithContext(context.Background()).Create(user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", seed.Email, err)
		}
		out[seed.Email] = user
		fmt.Printf("  user %-24s role=%s\n", user.Email, user.Role)
	}
	return out, nil
}

func (s *Seeder) seedSpaces(seededUsers map[string]*users.User) error {
	pg := s.db.GetPostgreSQL()

	olivia := seededUsers["olivia@spacehub.dev"]
	marcus := seededUsers["marcus@spacehub.dev"]

	type seedRoom struct {
		Name       string
		Capacity   int
		HourlyRate float64
		Equipment  []string
	}
	type seedSpace struct {
		Owner       *users.User
		Title       string
		Category    string
		Address     string
		City        string
		Description string
		Rooms       []seedRoom
	}

	seeds := []seedSpace{
		{
			Owner:       olivia,
			Title:       "Harborview Workspace",
			Category:    spaces.CategoryMeetingRoom,
			Address:     "12 Quay Street",
			City:        "Rotterdam",
			Description: "Meeting rooms with a view over the old harbor.",
			Rooms: []seedRoom{
				{"Dockside", 8, 35, []string{"whiteboard", "display", "conference phone"}},
				{"Lighthouse", 4, 22, []string{"whiteboard"}},
			},
		},
		{
			Owner:       olivia,
			Title:       "Harborview Desks",
			Category:    spaces.CategoryDesk,
			Address:     "12 Quay Street",
			City:        "Rotterdam",
			Description: "Hot desks on the open floor.",
			Rooms: []seedRoom{
				{"Desk A1", 1, 6, nil},
				{"Desk A2", 1, 6, nil},
			},
		},
		{
			Owner:       marcus,
			Title:       "The Foundry",
			Category:    spaces.CategoryEventSpace,
			Address:     "88 Iron Lane",
			City:        "Utrecht",
			Description: "Industrial event space for up to 120 guests.",
			Rooms: []seedRoom{
				{"Main Hall", 120, 180, []string{"stage", "PA system", "projector"}},
			},
		},
		{
			Owner:       marcus,
			Title:       "Canal Offices",
			Category:    spaces.CategoryPrivateOffice,
			Address:     "3 Brouwersgracht",
			City:        "Amsterdam",
			Description: "Private offices in a renovated canal house.",
			Rooms: []seedRoom{
				{"Office 1", 6, 55, []string{"lockable door", "display"}},
				{"Office 2", 10, 75, []string{"lockable door", "display", "whiteboard"}},
			},
		},
	}

	ctx := context.Background()
	for _, seed := range seeds {
		space := &spaces.Space{
			OwnerID:     seed.Owner.ID,
			Title:       seed.Title,
			Description: seed.Description,
			Category:    seed.Category,
			Address:     seed.Address,
			City:        seed.City,
			IsActive:    true,
			IsApproved:  true, // seeded listings skip the approval queue
		}
		if err := pg.WithContext(ctx).Create(space).Error; err != nil {
			return fmt.Errorf("failed to create space %s: %w", seed.Title, err)
		}

		for _, r := range seed.Rooms {
			room := &spaces.Room{
				SpaceID:    space.ID,
				Name:       r.Name,
				Capacity:   r.Capacity,
				HourlyRate: r.HourlyRate,
				Equipment:  r.Equipment,
			}
			if err := pg.WithContext(ctx).Create(room).Error; err != nil {
				return fmt.Errorf("failed to create room %s: %w", r.Name, err)
			}
		}
		fmt.Printf("  space %-24s rooms=%d city=%s\n", space.Title, len(seed.Rooms), space.City)
	}

	return nil
}
