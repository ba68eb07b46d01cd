// Command demo fills the configured store with sample items and messages.
package main

import (
	"context"
	"fmt"
	"log"

	"tableflip.dev/lostfound/pkg/app"
	"tableflip.dev/lostfound/pkg/chat"
	"tableflip.dev/lostfound/pkg/config"
	"tableflip.dev/lostfound/pkg/di"
	"tableflip.dev/lostfound/pkg/identity"
)

var samples = []app.ReportInput{
	{Title: "Blue umbrella", Kind: "lost", Category: "Accessories", Location: "Library", Date: "2025-03-03", Time: "14:30"},
	{Title: "Student ID card", Kind: "found", Category: "Cards", Location: "Cafeteria", Date: "2025-03-04"},
	{Title: "AirPods case", Kind: "lost", Category: "Electronics", Location: "Gym", Keywords: []string{"white", "apple"}},
	{Title: "Calculus textbook", Kind: "found", Category: "Books", Location: "Lecture Hall B", Description: "Stewart, 8th edition, name written inside the cover."},
	{Title: "Bike keys", Kind: "lost", Category: "Keys", Location: "Library", ContactName: "Sam", Email: "sam@example.edu"},
	{Title: "Black water bottle", Kind: "found", Category: "Accessories", Location: "Gym"},
	{Title: "Laptop charger", Kind: "found", Category: "Electronics", Location: "Library"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.User.UID == "" {
		cfg.User = config.User{UID: "demo", Name: "Demo User"}
	}
	a, cleanup, err := di.InitApp(cfg, di.Quiet(false))
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()
	ctx := a.Context(context.Background())

	helper := identity.Identity{UID: "helper", DisplayName: "Front Desk"}
	for i, in := range samples {
		r, err := a.Service.Report(ctx, in)
		if err != nil {
			log.Fatal(err)
		}
		if i%2 == 0 {
			if _, err := chat.Send(ctx, a.Store, r.ID, "Is this still missing? Something like it was handed in.", helper); err != nil {
				log.Fatal(err)
			}
		}
		fmt.Printf("%s %s %s\n", r.ID, r.Kind, r.Title)
	}
}
