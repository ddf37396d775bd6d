package history

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// exportEntry is the YAML shape of one decision for post-hoc analysis.
type exportEntry struct {
	ID        string    `yaml:"id"`
	Pod       string    `yaml:"pod"`
	Namespace string    `yaml:"namespace"`
	Node      string    `yaml:"node"`
	Policy    string    `yaml:"policy"`
	NodeCPU   float64   `yaml:"node_cpu_percent"`
	Estimated bool      `yaml:"estimated"`
	Timestamp time.Time `yaml:"timestamp"`
}

type exportSwitch struct {
	From       string    `yaml:"from"`
	To         string    `yaml:"to"`
	ClusterCPU float64   `yaml:"cluster_cpu_percent"`
	Timestamp  time.Time `yaml:"timestamp"`
}

type exportDoc struct {
	Decisions []exportEntry  `yaml:"decisions"`
	Switches  []exportSwitch `yaml:"switches"`
}

// WriteYAML dumps the full log as YAML for the experiment pipeline.
func (l *Log) WriteYAML(w io.Writer) error {
	doc := exportDoc{}
	for _, d := range l.Decisions() {
		doc.Decisions = append(doc.Decisions, exportEntry{
			ID:        d.ID,
			Pod:       d.Pod,
			Namespace: d.Namespace,
			Node:      d.Node,
			Policy:    string(d.Policy),
			NodeCPU:   d.NodeCPU,
			Estimated: d.Estimated,
			Timestamp: d.Timestamp,
		})
	}
	for _, s := range l.Switches() {
		doc.Switches = append(doc.Switches, exportSwitch{
			From:       string(s.From),
			To:         string(s.To),
			ClusterCPU: s.ClusterCPU,
			Timestamp:  s.Timestamp,
		})
	}
	return yaml.NewEncoder(w).Encode(doc)
}

// ExportFile writes the log to path, creating or truncating it.
func (l *Log) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create decision log file: %w", err)
	}
	defer f.Close()

	if err := l.WriteYAML(f); err != nil {
		return fmt.Errorf("failed to write decision log: %w", err)
	}
	return nil
}
