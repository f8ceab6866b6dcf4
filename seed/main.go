// Command seed fills a development database with demo farmers, tractor owners and workers.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"cropconnect/config"
	"cropconnect/database"
	listingRepo "cropconnect/database/repository/listing"
	userRepoPkg "cropconnect/database/repository/user"
	"cropconnect/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "password123"

var (
	districts = []models.Location{
		{Village: "Ozar", District: "Nashik", State: "Maharashtra"},
		{Village: "Hadapsar", District: "Pune", State: "Maharashtra"},
		{Village: "Karanja", District: "Aurangabad", State: "Maharashtra"},
	}
	workTypes = []string{"Plowing", "Harrowing", "Sowing", "Harvesting", "Rotavator"}
	skills    = []string{"Harvesting", "Weeding", "Sowing", "Spraying", "Irrigation"}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("seed: refusing to run against production")
	}

	client, db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	defer database.Disconnect(client) //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, coll := range []string{"users", "tractor_services", "worker_services"} {
		if _, err := db.Collection(coll).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("seed: failed to clear %s: %v", coll, err)
		}
	}

	users, err := userRepoPkg.NewMongoUserRepo(db)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	tractors, err := listingRepo.NewMongoTractorRepo(db)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	workers, err := listingRepo.NewMongoWorkerRepo(db)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	newUser := func(role models.Role, n int, loc models.Location, gender models.Gender) *models.User {
		u := &models.User{
			ID:           uuid.New().String(),
			Name:         fmt.Sprintf("%s %s %d", loc.District, role, n),
			Email:        fmt.Sprintf("%s%d.%s@example.com", role, n, loc.District),
			Phone:        fmt.Sprintf("98%08d", rng.Intn(100000000)),
			PasswordHash: string(hash),
			Role:         role,
			Gender:       gender,
			Location:     loc,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("seed: failed to create %s: %v", u.Email, err)
		}
		return u
	}

	var created int
	for _, loc := range districts {
		newUser(models.RoleFarmer, 1, loc, models.GenderMale)

		for i := 1; i <= 3; i++ {
			owner := newUser(models.RoleTractorOwner, i, loc, models.GenderMale)
			t := &models.TractorService{
				ID:          uuid.New().String(),
				OwnerID:     owner.ID,
				Name:        fmt.Sprintf("Tractor %d", i),
				Model:       []string{"Mahindra 575 DI", "Swaraj 744 FE", "John Deere 5050D"}[i-1],
				HorsePower:  40 + rng.Intn(20),
				WorkTypes:   pick(rng, workTypes, 3),
				RatePerAcre: float64(900 + 50*rng.Intn(10)),
				Location:    loc,
				Available:   true,
			}
			if err := tractors.Create(ctx, t); err != nil {
				log.Fatalf("seed: failed to create tractor: %v", err)
			}
			created++
		}

		for i := 1; i <= 4; i++ {
			gender := models.GenderMale
			if i%2 == 0 {
				gender = models.GenderFemale
			}
			worker := newUser(models.RoleWorker, i, loc, gender)
			w := &models.WorkerService{
				ID:              uuid.New().String(),
				WorkerID:        worker.ID,
				Skills:          pick(rng, skills, 2),
				WagePerDay:      float64(350 + 25*rng.Intn(8)),
				Gender:          gender,
				ExperienceYears: 1 + rng.Intn(15),
				Location:        loc,
				Available:       true,
			}
			if _, err := workers.Upsert(ctx, w); err != nil {
				log.Fatalf("seed: failed to create worker listing: %v", err)
			}
			created++
		}
	}

	log.Printf("seeded %d districts and %d listings; every demo account uses password %q", len(districts), created, demoPassword)
}

func pick(rng *rand.Rand, from []string, n int) []string {
	idx := rng.Perm(len(from))[:n]
	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, from[i])
	}
	return out
}
