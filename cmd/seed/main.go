// Seed loads a handful of directory users into the chat database so a
// fresh install has someone to talk to. The chat core treats accounts
// as an external collaborator; this stands in for that system during
// development.
package main

import (
	"flag"
	"fmt"
	"log"

	"collab-chat/domain"
	"collab-chat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
)

func main() {
	dbPath := flag.String("db", "./data/chat", "Path to badger DB")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	directory := repositories.NewUserDirectory(db)
	users := []domain.User{
		{ID: 1, Name: "Alice Park", Active: true},
		{ID: 2, Name: "Bob Seo", Active: true},
		{ID: 3, Name: "Clara Min", Active: true},
		{ID: 4, Name: "Dan Hwang", Active: false},
	}
	for _, user := range users {
		if err := directory.Put(user); err != nil {
			log.Fatalf("Seeding user %d failed: %v", user.ID, err)
		}
		fmt.Printf("user %d (%s) seeded\n", user.ID, user.Name)
	}
	color.Green.Println("Directory ready")
}
