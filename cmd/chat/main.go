package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go-leavechat/internal/bootstrap"
	"go-leavechat/internal/chat"
	"go-leavechat/internal/config"
	"go-leavechat/internal/leave"
	"go-leavechat/internal/nlp/dateparse"
	"go-leavechat/internal/nlp/entity"
	"go-leavechat/internal/nlp/intent"
	"go-leavechat/internal/shared/connection"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const lineWidth = 70

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config failed:", err)
		os.Exit(1)
	}

	db, err := connection.ConnectGORMWithRetry(connection.PostgresConfig{
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
		SSLMode:  cfg.DBSSLMode,
	}, 3)
	if err != nil {
		fmt.Fprintln(os.Stderr, "database connection failed:", err)
		os.Exit(1)
	}
	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 3)
	if err != nil {
		fmt.Fprintln(os.Stderr, "redis connection failed:", err)
		os.Exit(1)
	}
	defer rdb.Close()

	rules := leave.Rules{
		MinBalance:         cfg.MinBalance(),
		MaxConsecutiveDays: cfg.MaxConsecutiveDays,
		WeekendCounts:      cfg.WeekendCounts,
	}
	service := leave.NewService(
		db,
		leave.NewRepository(db),
		leave.NewRedisPendingStore(rdb, cfg.PendingTTL),
		leave.NewNoopEventPublisher(),
		bootstrap.NewStdoutAuditLogger(),
		rules,
		logger,
	)

	parser := dateparse.New()
	orchestrator := chat.NewOrchestrator(
		intent.NewClassifier(),
		entity.NewExtractor(parser, cfg.WeekendCounts),
		service,
		cfg.ConfidenceThreshold,
		logger,
	)

	run(orchestrator)
}

func run(o *chat.Orchestrator) {
	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	banner()
	for {
		if !login(ctx, o, scanner) {
			fmt.Println("\nGoodbye! 👋")
			return
		}
		if !converse(ctx, o, scanner) {
			fmt.Println("\nThank you for using the leave assistant. Goodbye! 👋")
			return
		}
		// logout falls through and restarts the login prompt
	}
}

func banner() {
	fmt.Println(strings.Repeat("=", lineWidth))
	fmt.Println("              LEAVE MANAGEMENT ASSISTANT")
	fmt.Println(strings.Repeat("=", lineWidth))
	fmt.Println()
	fmt.Println("Please enter your Employee ID to continue")
	fmt.Println(strings.Repeat("-", lineWidth))
}

// login prompts until an employee is pinned; returns false to quit.
func login(ctx context.Context, o *chat.Orchestrator, scanner *bufio.Scanner) bool {
	for {
		fmt.Print("\nEmployee ID: ")
		if !scanner.Scan() {
			return false
		}
		id := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if id == "" {
			continue
		}
		if id == "QUIT" || id == "EXIT" {
			return false
		}

		greeting, err := o.SetEmployee(ctx, id)
		if err != nil {
			fmt.Printf("\n✗ %v\n", err)
			fmt.Println("Please try again or type 'quit' to exit.")
			continue
		}

		fmt.Printf("\n✓ %s\n", greeting)
		fmt.Println("\n" + strings.Repeat("=", lineWidth))
		fmt.Println("What can I help you with today?")
		fmt.Println(strings.Repeat("-", lineWidth))
		fmt.Println("Examples:")
		fmt.Println("  • I need leave from tomorrow to Friday")
		fmt.Println("  • What's my leave balance?")
		fmt.Println("  • Show my leave history")
		fmt.Println("  • Type 'logout' to switch employee or 'quit' to exit")
		fmt.Println(strings.Repeat("=", lineWidth))
		fmt.Println()
		return true
	}
}

// converse runs the utterance loop; returns true on logout, false on quit.
func converse(ctx context.Context, o *chat.Orchestrator, scanner *bufio.Scanner) bool {
	for {
		fmt.Printf("%s: ", o.EmployeeID())
		if !scanner.Scan() {
			return false
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "logout", "switch", "change employee":
			fmt.Println("\n" + strings.Repeat("=", lineWidth))
			fmt.Println("Logging out...")
			return true
		case "quit", "exit", "bye":
			return false
		}

		reply := o.Process(ctx, input)
		fmt.Printf("\nAssistant: %s\n\n", reply.Text)
		fmt.Println(strings.Repeat("-", lineWidth))
	}
}
