package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gymplan/database"
	"gymplan/internal/utils"

	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found: %v", err)
		}
	}
}

func main() {
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	numWorkouts := seedCmd.Int("workouts", utils.DefaultNumWorkouts, "Number of sample workouts to create")

	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	database.ConnectDatabase()
	if err := database.MigrateDatabase(); err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}
	db := database.DB

	switch os.Args[1] {
	case "seed":
		seedCmd.Parse(os.Args[2:])
		log.Printf("Seeding %d sample workouts", *numWorkouts)
		if err := utils.SeedWorkouts(db, *numWorkouts); err != nil {
			log.Fatalf("Error seeding workouts: %v", err)
		}

	case "clear":
		if err := utils.ClearWorkouts(db); err != nil {
			log.Fatalf("Error clearing schedule: %v", err)
		}

	case "stats":
		if err := utils.WorkoutStats(db); err != nil {
			log.Fatalf("Error reading stats: %v", err)
		}

	case "help":
		printHelp()

	default:
		fmt.Printf("Unknown subcommand: %s\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Schedule utility tool for gymplan")
	fmt.Println("\nUsage:")
	fmt.Println("  db-tool COMMAND [OPTIONS]")
	fmt.Println("\nCommands:")
	fmt.Println("  seed         Create sample workouts for local development")
	fmt.Println("               Options:")
	fmt.Println("                 --workouts=N  Number of sample workouts to create (default: 12)")
	fmt.Println("")
	fmt.Println("  clear        Remove every workout from the local schedule")
	fmt.Println("")
	fmt.Println("  stats        Show workout counts per day of week")
	fmt.Println("")
	fmt.Println("  help         Show this help message")
	fmt.Println("")
	fmt.Println("Environment variables:")
	fmt.Println("  WORKOUT_DB_PATH  Path to the local schedule database (default: data/gymplan.db)")
}
