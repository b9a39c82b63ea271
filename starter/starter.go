package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"workorder-projection-system/codec"
	"workorder-projection-system/models"
	"workorder-projection-system/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
)

const (
	TaskQueueName = "workorder-projection-queue"
)

func main() {
	// Command line flags
	orderID := flag.String("order-id", "", "Work order ID (optional, auto-generated if not provided)")
	holidayKey := flag.String("holiday-key", "standard", "Holiday rule key (standard, six-day, alternating, continuous)")
	signal := flag.String("signal", "", "Send signal to workflow (complete-step, report-downtime or close)")
	stepID := flag.String("step-id", "", "Step ID for the complete-step signal")
	query := flag.Bool("query", false, "Query the projection snapshot")
	workflowID := flag.String("workflow-id", "", "Workflow ID for signal/query operations")
	flag.Parse()

	// Get Temporal server address from environment or use default
	temporalAddress := os.Getenv("TEMPORAL_ADDRESS")
	if temporalAddress == "" {
		temporalAddress = "localhost:7233"
	}

	// Get or generate encryption key
	encryptionKey := os.Getenv("ENCRYPTION_KEY")
	var keyBytes []byte
	var err error

	if encryptionKey != "" {
		keyBytes, err = hex.DecodeString(encryptionKey)
		if err != nil {
			log.Fatalf("Failed to decode encryption key: %v", err)
		}
	} else {
		// Generate a random 32-byte key for AES-256
		keyBytes = make([]byte, 32)
		if _, err := rand.Read(keyBytes); err != nil {
			log.Fatalf("Failed to generate encryption key: %v", err)
		}
		log.Printf("Warning: Using generated encryption key. Set ENCRYPTION_KEY env var to match worker.")
		log.Printf("Generated key: %s", hex.EncodeToString(keyBytes))
	}

	// Create data converter with encryption
	dataConverter, err := codec.NewEncryptionDataConverter(keyBytes)
	if err != nil {
		log.Fatalf("Failed to create encryption data converter: %v", err)
	}

	// Create Temporal client with encryption
	c, err := client.Dial(client.Options{
		HostPort:      temporalAddress,
		DataConverter: dataConverter,
	})
	if err != nil {
		log.Fatalf("Unable to create Temporal client: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	// Handle signal operations
	if *signal != "" {
		if *workflowID == "" {
			log.Fatal("Workflow ID is required for signal operations. Use -workflow-id flag")
		}
		sendSignal(ctx, c, *workflowID, *signal, *stepID)
		return
	}

	// Handle query operations
	if *query {
		if *workflowID == "" {
			log.Fatal("Workflow ID is required for query operations. Use -workflow-id flag")
		}
		queryProjection(ctx, c, *workflowID)
		return
	}

	// Start a new tracking workflow
	startWorkflow(ctx, c, *orderID, *holidayKey)
}

func startWorkflow(ctx context.Context, c client.Client, orderID, holidayKey string) {
	// Generate order ID if not provided
	if orderID == "" {
		orderID = uuid.New().String()
	}

	now := time.Now()
	target := dayOf(now.AddDate(0, 0, 14))

	// Sample work order: machining and finishing lines run in parallel
	order := models.WorkOrder{
		ID:         orderID,
		Number:     fmt.Sprintf("WO-%s", orderID[:8]),
		StartDate:  dayOf(now),
		TargetDate: &target,
		HolidayKey: holidayKey,
		Model: models.ProcessModel{
			Steps: []models.ProcessStep{
				{ID: "cut", Name: "Cutting", ParallelLineID: "machining", EstimatedHours: 16},
				{ID: "mill", Name: "Milling", ParallelLineID: "machining", EstimatedHours: 24},
				{ID: "drill", Name: "Drilling", ParallelLineID: "machining", EstimatedHours: 8},
				{ID: "sand", Name: "Sanding", ParallelLineID: "finishing", EstimatedHours: 8},
				{ID: "paint", Name: "Painting", ParallelLineID: "finishing", EstimatedHours: 16},
				{ID: "inspect", Name: "Final inspection", EstimatedHours: 4},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	workflowOptions := client.StartWorkflowOptions{
		ID:                    fmt.Sprintf("workorder-tracking-%s", order.ID),
		TaskQueue:             TaskQueueName,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}

	log.Printf("Starting tracking workflow for order: %s", order.Number)
	log.Printf("Holiday key: %s", order.HolidayKey)
	log.Printf("Target date: %s", target.Format("2006-01-02"))
	log.Printf("Workflow ID: %s", workflowOptions.ID)

	we, err := c.ExecuteWorkflow(ctx, workflowOptions, workflows.WorkOrderTrackingWorkflow, order)
	if err != nil {
		log.Fatalf("Unable to execute workflow: %v", err)
	}

	log.Printf("Started workflow successfully")
	log.Printf("WorkflowID: %s", we.GetID())
	log.Printf("RunID: %s", we.GetRunID())
	log.Println("\nTo query the projection, run:")
	log.Printf("  go run starter/starter.go -query -workflow-id %s\n", we.GetID())
	log.Println("To report progress, run:")
	log.Printf("  go run starter/starter.go -signal complete-step -step-id cut -workflow-id %s", we.GetID())
	log.Printf("  go run starter/starter.go -signal report-downtime -workflow-id %s", we.GetID())
	log.Printf("  go run starter/starter.go -signal close -workflow-id %s", we.GetID())
}

func sendSignal(ctx context.Context, c client.Client, workflowID, signal, stepID string) {
	log.Printf("Sending signal '%s' to workflow: %s", signal, workflowID)

	var err error
	switch signal {
	case "complete-step":
		if stepID == "" {
			log.Fatal("Step ID is required for complete-step. Use -step-id flag")
		}
		update := models.StepUpdate{
			StepID: stepID,
			State:  models.CompletedStep(time.Now()),
		}
		err = c.SignalWorkflow(ctx, workflowID, "", workflows.SignalStepUpdated, update)
	case "report-downtime":
		incident := models.DowntimeIncident{
			ID:        uuid.New().String(),
			StartTime: time.Now(),
			Mode:      models.DowntimeBlocking,
			Reason:    "reported via starter",
		}
		err = c.SignalWorkflow(ctx, workflowID, "", workflows.SignalDowntimeReported, incident)
	case "close":
		err = c.SignalWorkflow(ctx, workflowID, "", workflows.SignalCloseOrder, "closed via starter")
	default:
		log.Fatalf("Unknown signal: %s. Valid signals: complete-step, report-downtime, close", signal)
	}

	if err != nil {
		log.Fatalf("Failed to send signal: %v", err)
	}

	log.Printf("Signal '%s' sent successfully", signal)
}

func queryProjection(ctx context.Context, c client.Client, workflowID string) {
	log.Printf("Querying projection: %s", workflowID)

	resp, err := c.QueryWorkflow(ctx, workflowID, "", workflows.QueryProjection)
	if err != nil {
		log.Fatalf("Failed to query workflow: %v", err)
	}

	var state models.TrackingState
	if err := resp.Get(&state); err != nil {
		log.Fatalf("Failed to decode query result: %v", err)
	}

	// Pretty print the snapshot
	stateJSON, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal state: %v", err)
	}

	log.Println("\nProjection Snapshot:")
	fmt.Println(string(stateJSON))
}

// dayOf truncates a time to calendar-day granularity
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
