package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opsboard/dispatch/pkg/models"
)

var (
	memberAddID       string
	memberAddRole     string
	memberAddCapacity int
	memberAddSkills   []string
)

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage the member directory",
}

var memberAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a member to the directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemberAdd,
}

var memberListCmd = &cobra.Command{
	Use:   "list",
	Short: "List members with their load",
	RunE:  runMemberList,
}

var memberDeactivateCmd = &cobra.Command{
	Use:   "deactivate <member-id>",
	Short: "Deactivate a member and release all their tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemberDeactivate,
}

var memberImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import members from a YAML team file",
	Long: `Import members from a YAML file.

The file holds a list of member records:

  - name: Ada
    role: engineer
    max_capacity: 5
    skills: [backend, sql]
  - name: Vic
    role: head_manager
    max_capacity: 6`,
	Args: cobra.ExactArgs(1),
	RunE: runMemberImport,
}

func init() {
	memberAddCmd.Flags().StringVar(&memberAddID, "id", "", "Member ID (generated when omitted)")
	memberAddCmd.Flags().StringVar(&memberAddRole, "role", "engineer", "Role: engineer, head_manager, head_of_department")
	memberAddCmd.Flags().IntVar(&memberAddCapacity, "capacity", 5, "Maximum concurrent tasks")
	memberAddCmd.Flags().StringSliceVar(&memberAddSkills, "skills", nil, "Skill tags for soft matching")

	memberCmd.AddCommand(memberAddCmd)
	memberCmd.AddCommand(memberListCmd)
	memberCmd.AddCommand(memberDeactivateCmd)
	memberCmd.AddCommand(memberImportCmd)
}

func runMemberAdd(cmd *cobra.Command, args []string) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	id := memberAddID
	if id == "" {
		id = uuid.New().String()[:8]
	}

	member := &models.Member{
		ID:          id,
		Name:        args[0],
		Role:        models.Role(memberAddRole),
		Status:      models.MemberStatusActive,
		MaxCapacity: memberAddCapacity,
		Skills:      memberAddSkills,
		CreatedAt:   time.Now(),
	}
	if err := db.CreateMember(member); err != nil {
		return err
	}

	color.Green("✓ Added %s (%s, %s, capacity %d)", member.Name, member.ID, member.Role, member.MaxCapacity)
	return nil
}

func runMemberList(cmd *cobra.Command, args []string) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	members, err := db.ListMembers()
	if err != nil {
		return err
	}
	if len(members) == 0 {
		fmt.Println("No members. Add one with 'dispatch member add <name>'.")
		return nil
	}

	for _, m := range members {
		line := fmt.Sprintf("%-10s %-20s %-20s load %d/%d", m.ID, m.Name, m.Role, m.CurrentLoad, m.MaxCapacity)
		if m.Status == models.MemberStatusInactive {
			color.New(color.Faint).Printf("%s (inactive)\n", line)
			continue
		}
		if m.Headroom() == 0 {
			color.Yellow("%s (full)", line)
			continue
		}
		fmt.Println(line)
	}
	return nil
}

func runMemberDeactivate(cmd *cobra.Command, args []string) error {
	db, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := newEngine(db, cfg)
	if err != nil {
		return err
	}

	report, err := eng.DeactivateMember(context.Background(), args[0])
	if err != nil {
		return err
	}

	color.Yellow("Deactivated %s", report.MemberID)
	for _, taskID := range report.ReleasedTasks {
		fmt.Printf("  released task %s back to pending\n", taskID)
	}
	if len(report.ReleasedTasks) == 0 {
		fmt.Println("  no tasks were held")
	}
	return nil
}

// memberSeed is the YAML shape for team import files.
type memberSeed struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Role        string   `yaml:"role"`
	MaxCapacity int      `yaml:"max_capacity"`
	Skills      []string `yaml:"skills"`
}

func runMemberImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read team file: %w", err)
	}

	var seeds []memberSeed
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("parse team file: %w", err)
	}

	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	imported := 0
	for _, seed := range seeds {
		id := seed.ID
		if id == "" {
			id = uuid.New().String()[:8]
		}
		member := &models.Member{
			ID:          id,
			Name:        seed.Name,
			Role:        models.Role(seed.Role),
			Status:      models.MemberStatusActive,
			MaxCapacity: seed.MaxCapacity,
			Skills:      seed.Skills,
			CreatedAt:   time.Now(),
		}
		if err := db.CreateMember(member); err != nil {
			color.Red("✗ %s: %v", seed.Name, err)
			continue
		}
		imported++
	}

	color.Green("✓ Imported %d of %d members", imported, len(seeds))
	return nil
}
