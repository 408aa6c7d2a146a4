// Command history inspects persisted conversations from the terminal. It
// opens BadgerDB read-only, so it can run next to a live server without
// stealing the lock.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"telechat/domain"
	"telechat/repositories"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
	PageSize       int    `envconfig:"HISTORY_PAGE_SIZE" default:"50"`
	Colours        bool   `envconfig:"HISTORY_COLOURS" default:"true"`
}

func main() {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	conversationID := flag.String("conversation", "", "Conversation to display")
	pages := flag.Int("pages", 1, "Number of pages to fetch")
	flag.Parse()
	if *conversationID == "" {
		log.Fatal("Missing -conversation flag")
	}

	// BypassLockGuard allows opening while the chat server holds the lock.
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repository := repositories.NewMessageRepository(db, slog.Default(), &config.PageSize)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Sender", "Role", "Read", "Content"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	total := 0
	var cursor *string
	for page := 0; page < *pages; page++ {
		messages, next, err := repository.History(*conversationID, cursor)
		if err != nil {
			log.Fatalf("History fetch failed: %v", err)
		}
		for _, msg := range messages {
			table.Append([]string{
				msg.CreatedAt.Format("2006-01-02 15:04:05"),
				msg.SenderID,
				roleLabel(msg.SenderRole, config.Colours),
				readLabel(msg.Read, config.Colours),
				msg.Content,
			})
		}
		total += len(messages)
		if next == nil || len(messages) < config.PageSize {
			break
		}
		cursor = next
	}

	fmt.Printf("Conversation %s, %d message(s), newest first:\n\n", *conversationID, total)
	table.Render()
}

func roleLabel(role domain.Role, colours bool) string {
	if !colours {
		return string(role)
	}
	switch role {
	case domain.RoleDoctor:
		return color.Cyan.Render(role)
	default:
		return color.Green.Render(role)
	}
}

func readLabel(read bool, colours bool) string {
	switch {
	case read && colours:
		return color.Green.Render("yes")
	case read:
		return "yes"
	case colours:
		return color.Yellow.Render("no")
	default:
		return "no"
	}
}
