package main

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"spotly/internal/config"
	"spotly/internal/db"
	"spotly/internal/logging"
	"spotly/internal/model"
	"spotly/internal/repository"
	"spotly/internal/service"
)

// SeedUser is an account created by the seed.
type SeedUser struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

var seedUsers = []SeedUser{
	{Name: "Admin User", Email: "admin@spotly.com", Password: "admin123", Role: model.RoleAdmin},
	{Name: "Business Owner", Email: "owner@spotly.com", Password: "owner123", Role: model.RoleBusinessOwner},
	{Name: "John Doe", Email: "user@spotly.com", Password: "user123", Role: model.RoleUser},
	{Name: "Maya Moderator", Email: "moderator@spotly.com", Password: "moderator123", Role: model.RoleModerator},
}

// seedReview is a rating given by the regular user to the spot at index Spot.
type seedReview struct {
	Spot   int
	Rating int
	Text   string
}

var seedReviews = []seedReview{
	{Spot: 0, Rating: 5, Text: "Stunning views and the cocktails were spot on."},
	{Spot: 1, Rating: 5, Text: "The omakase was the best meal I have had this year."},
	{Spot: 2, Rating: 4, Text: "Great coffee, a bit crowded on weekends."},
	{Spot: 3, Rating: 4, Text: "Clean, well equipped and friendly trainers."},
}

func everyDay(hours string) model.Hours {
	return model.Hours{
		Monday: hours, Tuesday: hours, Wednesday: hours, Thursday: hours,
		Friday: hours, Saturday: hours, Sunday: hours,
	}
}

func seedSpots(owner *model.User) []*model.Spot {
	ownerID := owner.ID
	spot := func(s model.Spot) *model.Spot {
		s.IsVerified = true
		s.IsActive = true
		s.Status = model.StatusApproved
		s.Images = append(s.Images, s.FeaturedImage)
		return &s
	}

	return []*model.Spot{
		spot(model.Spot{
			Name:          "The Cloud Lounge",
			Description:   "Breathtaking city views from a rooftop lounge with crafted cocktails and live DJ sets.",
			Category:      model.CategoryEntertainment,
			Subcategory:   "Nightlife",
			Location:      model.Location{Address: "123 Skyline Avenue, Downtown", City: "Mumbai", Coordinates: model.GeoPoint{Longitude: 72.8777, Latitude: 19.0760}},
			Contact:       model.Contact{Phone: "+91 98765 43210", Website: "https://thecloudlounge.com", Email: "info@thecloudlounge.com"},
			Hours:         everyDay("6:00 PM - 2:00 AM"),
			FeaturedImage: "https://images.unsplash.com/photo-1514362545857-3bc16c4c7d1b?q=80&w=2070",
			PriceRange:    model.PriceExpensive,
			Tags:          []string{"Rooftop", "Cocktails", "Live Music", "Nightlife", "Bar"},
			Features:      []string{"WiFi", "Parking", "Valet", "Outdoor Seating", "Live DJ"},
			OwnerID:       &ownerID,
		}),
		spot(model.Spot{
			Name:          "Sakura Fusion",
			Description:   "Authentic Japanese cuisine meets modern fusion in an elegant, romantic setting.",
			Category:      model.CategoryFoodCafes,
			Subcategory:   "Fine Dining",
			Location:      model.Location{Address: "45 Arts District Road", City: "Mumbai", Coordinates: model.GeoPoint{Longitude: 72.8258, Latitude: 18.9750}},
			Contact:       model.Contact{Phone: "+91 98765 43211", Website: "https://sakurafusion.com", Email: "reservations@sakurafusion.com"},
			Hours:         everyDay("12:00 PM - 11:00 PM"),
			FeaturedImage: "https://images.unsplash.com/photo-1517248135467-4c7edcad34c4?q=80&w=2070",
			PriceRange:    model.PriceLuxury,
			Tags:          []string{"Sushi", "Japanese", "Fine", "Romantic"},
			Features:      []string{"WiFi", "Reservations", "Private Dining", "Sake Bar"},
			OwnerID:       &ownerID,
		}),
		spot(model.Spot{
			Name:          "Brew & Bean",
			Description:   "Your neighborhood coffee sanctuary with artisanal coffee, fresh pastries and a quiet corner to work.",
			Category:      model.CategoryFoodCafes,
			Subcategory:   "Cafe",
			Location:      model.Location{Address: "78 University Avenue", City: "Mumbai", Coordinates: model.GeoPoint{Longitude: 72.8347, Latitude: 19.1076}},
			Contact:       model.Contact{Phone: "+91 98765 43212", Website: "https://brewandbean.com", Email: "hello@brewandbean.com"},
			Hours:         everyDay("7:00 AM - 10:00 PM"),
			FeaturedImage: "https://images.unsplash.com/photo-1509042239860-f550ce710b93?q=80&w=2574",
			PriceRange:    model.PriceBudget,
			Tags:          []string{"Coffee", "Cafe", "Quiet", "Study Spot"},
			Features:      []string{"WiFi", "Power Outlets", "Outdoor Seating", "Takeaway"},
		}),
		spot(model.Spot{
			Name:          "FitZone Pro",
			Description:   "State of the art fitness center with professional trainers, modern equipment and diverse classes.",
			Category:      model.CategoryHealth,
			Subcategory:   "Gym",
			Location:      model.Location{Address: "90 Health Park Complex", City: "Mumbai", Coordinates: model.GeoPoint{Longitude: 72.8479, Latitude: 19.0896}},
			Contact:       model.Contact{Phone: "+91 98765 43213", Website: "https://fitzonepro.com", Email: "info@fitzonepro.com"},
			Hours:         everyDay("5:00 AM - 11:00 PM"),
			FeaturedImage: "https://images.unsplash.com/photo-1534438327276-14e5300c3a48?q=80&w=2070",
			PriceRange:    model.PriceModerate,
			Tags:          []string{"Gym", "Personal Training", "Yoga", "Crossfit"},
			Features:      []string{"Locker Rooms", "Showers", "Parking", "Trainers", "Classes"},
		}),
		spot(model.Spot{
			Name:          "Style Studio",
			Description:   "Trendy boutique with curated collections from emerging designers and established brands.",
			Category:      model.CategoryFashion,
			Subcategory:   "Boutique",
			Location:      model.Location{Address: "56 Fashion Street", City: "Mumbai", Coordinates: model.GeoPoint{Longitude: 72.8311, Latitude: 18.9322}},
			Contact:       model.Contact{Phone: "+91 98765 43214", Website: "https://stylestudio.com", Email: "shop@stylestudio.com"},
			Hours:         everyDay("10:00 AM - 9:00 PM"),
			FeaturedImage: "https://images.unsplash.com/photo-1441986300917-64674bd600d8?q=80&w=2070",
			PriceRange:    model.PriceExpensive,
			Tags:          []string{"Fashion", "Boutique", "Designer", "Trendy"},
			Features:      []string{"Personal Styling", "Alterations", "Gift Cards"},
		}),
	}
}

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console", Timestamp: true})
	logging.Info().Msg("Starting seed script...")

	gormDB, err := db.Open(cfg.DBDriver, cfg.MySQLDSN, cfg.SQLitePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// The seed always starts from an empty schema.
	if err := db.Reset(gormDB); err != nil {
		logging.Fatal().Err(err).Msg("Failed to reset database")
	}
	logging.Info().Msg("Database reset")

	ctx := context.Background()
	repos := repository.NewRepositories(gormDB)

	users, err := createUsers(ctx, repos, seedUsers)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed users")
	}

	owner := users["owner@spotly.com"]
	business := &model.Business{
		OwnerID:            owner.ID,
		BusinessName:       "Skyline Hospitality",
		BusinessType:       "Restaurant Group",
		VerificationStatus: model.VerificationVerified,
		Plan:               model.PlanFree,
	}
	if err := repos.Businesses.Create(ctx, business); err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed business")
	}

	spots := seedSpots(owner)
	for _, s := range spots {
		if err := repos.Spots.Create(ctx, s); err != nil {
			logging.Fatal().Err(err).Str("spot", s.Name).Msg("Failed to seed spot")
		}
		if s.OwnedBy(owner.ID) {
			if err := repos.Businesses.AddClaimedSpot(ctx, business.ID, s.ID); err != nil {
				logging.Fatal().Err(err).Str("spot", s.Name).Msg("Failed to link spot to business")
			}
		}
	}

	// Reviews go through the service so spot ratings are aggregated.
	reviews := service.NewReviewService(repos)
	reviewer := users["user@spotly.com"]
	for _, r := range seedReviews {
		_, err := reviews.Create(ctx, service.Actor{ID: reviewer.ID, Role: reviewer.Role}, service.ReviewInput{
			SpotID: spots[r.Spot].ID.String(),
			Rating: r.Rating,
			Text:   r.Text,
		})
		if err != nil {
			logging.Fatal().Err(err).Str("spot", spots[r.Spot].Name).Msg("Failed to seed review")
		}
	}

	logging.Info().
		Int("users", len(users)).
		Int("spots", len(spots)).
		Int("reviews", len(seedReviews)).
		Msg("Seed completed successfully!")
	for _, u := range seedUsers {
		logging.Info().Str("role", string(u.Role)).Msg(fmt.Sprintf("%s / %s", u.Email, u.Password))
	}
}

// createUsers stores the seed accounts and returns them keyed by email.
func createUsers(ctx context.Context, repos *repository.Repositories, seeds []SeedUser) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(seeds))
	for _, s := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", s.Email, err)
		}
		u := &model.User{
			Name:         s.Name,
			Email:        s.Email,
			PasswordHash: string(hash),
			Role:         s.Role,
			IsVerified:   true,
			IsActive:     true,
		}
		if err := repos.Users.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("error creating user %s: %w", s.Email, err)
		}
		users[s.Email] = u
	}
	return users, nil
}
