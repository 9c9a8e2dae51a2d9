package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/angeloszaimis/ober/internal/ownership"
	"github.com/angeloszaimis/ober/internal/roster"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

var errUnknownNode = errors.New("node is not in the roster")

// assignmentView is the rendered form consumed by the VRRP config
// generator.
type assignmentView struct {
	Address  string `yaml:"address" json:"address"`
	CIDR     string `yaml:"cidr" json:"cidr"`
	Owner    string `yaml:"owner" json:"owner"`
	RouterID int    `yaml:"router_id" json:"router_id"`
	Instance string `yaml:"instance" json:"instance"`
	Priority int    `yaml:"priority,omitempty" json:"priority,omitempty"`
	Owned    *bool  `yaml:"owned,omitempty" json:"owned,omitempty"`
}

type assignmentReport struct {
	Node        string           `yaml:"node,omitempty" json:"node,omitempty"`
	Roster      []string         `yaml:"roster" json:"roster"`
	Assignments []assignmentView `yaml:"assignments" json:"assignments"`
}

func newAssignCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Print which node owns each virtual address",
		Long: "Print the owner, VRRP router id and instance name of every configured\n" +
			"virtual address. With a node (--node or cluster.node) the VRRP priority\n" +
			"that node should advertise is included.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.Validate(format, validation.In(formatYAML, formatJSON)); err != nil {
				return fmt.Errorf("--format: %w", err)
			}
			return a.assign(a.stdout, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatYAML, "output format: yaml or json")
	cmd.Flags().String("node", "", "render priorities for this node")

	return cmd
}

func (a *app) assign(w io.Writer, format string) error {
	addrs, err := a.cfg.Addresses()
	if err != nil {
		return err
	}
	nodes, err := a.cfg.Nodes()
	if err != nil {
		return err
	}

	canonical := roster.Canonical(nodes)
	node := roster.Node(a.cfg.Cluster.Node)
	if node != "" && !roster.Contains(canonical, node) {
		return fmt.Errorf("%w: %s", errUnknownNode, node)
	}

	assignments, err := ownership.Resolve(addrs, canonical)
	if err != nil {
		return err
	}

	report := assignmentReport{
		Node:        node.String(),
		Roster:      make([]string, 0, len(canonical)),
		Assignments: make([]assignmentView, 0, len(assignments)),
	}
	for _, n := range canonical {
		report.Roster = append(report.Roster, n.String())
	}
	for _, as := range assignments {
		view := assignmentView{
			Address:  as.Address.String(),
			CIDR:     as.Address.CIDR(),
			Owner:    as.Owner.String(),
			RouterID: as.RouterID,
			Instance: as.Instance,
		}
		if node != "" {
			owned := as.Owner == node
			view.Priority = as.Priority(node)
			view.Owned = &owned
		}
		report.Assignments = append(report.Assignments, view)
	}

	a.log.Debug("Resolved ownership",
		slog.Int("vips", len(assignments)),
		slog.Int("nodes", len(canonical)),
		slog.Int("owned", len(ownership.Owned(assignments, node))))

	return render(w, format, report)
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
}
