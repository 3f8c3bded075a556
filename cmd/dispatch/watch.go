package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opsboard/dispatch/internal/engine"
	"github.com/opsboard/dispatch/pkg/models"
)

var watchInbox string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch an inbox directory and auto-assign dropped task files",
	Long: `Watch a directory for task YAML files. Each dropped file is imported
and bulk-assigned in priority order, then removed. The overdue sweep runs
periodically while watching.

A task file holds a list of task records:

  - title: Review Q3 proposal
    priority: high
    due: 48h
    project: p-42
    required_skills: [finance]`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchInbox, "inbox", "", "Inbox directory (defaults to watch.inbox from config)")
}

// taskSeed is the YAML shape for inbox task files.
type taskSeed struct {
	ID             string   `yaml:"id"`
	Title          string   `yaml:"title"`
	Type           string   `yaml:"type"`
	Priority       string   `yaml:"priority"`
	Due            string   `yaml:"due"`
	Project        string   `yaml:"project"`
	RequiredSkills []string `yaml:"required_skills"`
}

func runWatch(cmd *cobra.Command, args []string) error {
	db, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := newEngine(db, cfg)
	if err != nil {
		return err
	}

	inbox := watchInbox
	if inbox == "" {
		inbox = cfg.Watch.Inbox
	}
	if inbox == "" {
		return fmt.Errorf("no inbox directory: pass --inbox or set watch.inbox")
	}
	if err := os.MkdirAll(inbox, 0755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(inbox); err != nil {
		return fmt.Errorf("watch %s: %w", inbox, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweepInterval := cfg.Watch.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	fmt.Printf("Watching %s (sweep every %s). Ctrl-C to stop.\n", inbox, sweepInterval)

	// Process anything already sitting in the inbox.
	entries, err := os.ReadDir(inbox)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			ingestTaskFile(ctx, eng, filepath.Join(inbox, entry.Name()))
		}
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopped.")
			return nil
		case <-ticker.C:
			swept, err := eng.SweepOverdue(ctx)
			if err != nil {
				color.Red("sweep: %v", err)
				continue
			}
			for _, id := range swept {
				color.Red("! task %s is overdue", id)
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			ingestTaskFile(ctx, eng, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			color.Red("watch: %v", err)
		}
	}
}

// ingestTaskFile imports a dropped YAML task file, bulk-assigns the new
// tasks, and removes the file. Non-YAML files are ignored.
func ingestTaskFile(ctx context.Context, eng *engine.Engine, path string) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		color.Red("✗ %s: %v", path, err)
		return
	}

	var seeds []taskSeed
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		color.Red("✗ %s: %v", path, err)
		return
	}

	db := eng.Store()
	var taskIDs []string
	for _, seed := range seeds {
		id := seed.ID
		if id == "" {
			id = uuid.New().String()[:8]
		}
		priority := models.TaskPriority(seed.Priority)
		if seed.Priority == "" {
			priority = models.PriorityMedium
		}
		dueAt, err := parseDue(seed.Due)
		if err != nil {
			color.Red("✗ %s: %v", seed.Title, err)
			continue
		}
		task := &models.Task{
			ID:             id,
			Title:          seed.Title,
			Type:           seed.Type,
			Priority:       priority,
			Status:         models.TaskStatusPending,
			DueAt:          dueAt,
			ProjectID:      seed.Project,
			RequiredSkills: seed.RequiredSkills,
			CreatedAt:      time.Now(),
		}
		if err := db.CreateTask(task); err != nil {
			color.Red("✗ %s: %v", seed.Title, err)
			continue
		}
		taskIDs = append(taskIDs, id)
	}

	if len(taskIDs) > 0 {
		report, err := eng.BulkAutoAssign(ctx, taskIDs)
		if err != nil {
			color.Red("✗ assign from %s: %v", path, err)
			return
		}
		for _, r := range report.Assigned {
			color.Green("✓ %s -> %s", r.TaskID, r.MemberID)
		}
		for _, r := range report.Unassignable {
			color.Yellow("• %s stays pending: %s", r.TaskID, r.Reason)
		}
	}

	if err := os.Remove(path); err != nil {
		color.Red("✗ remove %s: %v", path, err)
	}
}
