package store

import (
	"os"
	"path/filepath"

	"github.com/fractalmind/teamchat-go/internal/envelope"
	"github.com/fractalmind/teamchat-go/internal/errors"
	"github.com/fractalmind/teamchat-go/internal/fsutil"
	"github.com/fractalmind/teamchat-go/internal/identifier"
	"github.com/fractalmind/teamchat-go/internal/lock"
)

// MessageIndexEntry locates one inbox line by id.
type MessageIndexEntry struct {
	Inbox     string `json:"inbox"`
	CreatedAt string `json:"created_at"`
	To        string `json:"to"`
	Offset    *int64 `json:"offset,omitempty"`
}

// EventIndexEntry locates one event-log line by id.
type EventIndexEntry struct {
	File      string `json:"file"`
	CreatedAt string `json:"created_at"`
}

// AckIndexEntry records one acknowledgement.
type AckIndexEntry struct {
	MessageID  string `json:"message_id"`
	Agent      string `json:"agent"`
	AckedAt    string `json:"acked_at"`
	DeliveryID string `json:"delivery_id,omitempty"`
}

// Store presents one instance of the storage engine bound to a single
// (data-root, team) pair. All operations validate every path-forming id
// before it ever touches the filesystem.
type Store struct {
	root  string // dataRoot/teams/<team>
	team  string
	locks *lock.Manager

	messages *ShardedIndex[MessageIndexEntry]
	events   *ShardedIndex[EventIndexEntry]
	acks     *ShardedIndex[AckIndexEntry]
}

// Open validates team and returns a Store rooted at dataRoot/teams/<team>.
// It does not touch the filesystem; call EnsureLayout for that.
func Open(dataRoot, team string) (*Store, error) {
	validTeam, err := identifier.Validate("team", team)
	if err != nil {
		return nil, err
	}
	root := filepath.Join(dataRoot, "teams", validTeam)
	stateDir := filepath.Join(root, "state")
	return &Store{
		root:     root,
		team:     validTeam,
		locks:    lock.NewManager(filepath.Join(root, "locks")),
		messages: NewShardedIndex[MessageIndexEntry](stateDir, "message-index"),
		events:   NewShardedIndex[EventIndexEntry](stateDir, "event-index"),
		acks:     NewShardedIndex[AckIndexEntry](stateDir, "ack-index"),
	}, nil
}

// Team returns the validated team name this store is bound to.
func (s *Store) Team() string { return s.team }

// InboxesDir returns the directory holding one JSONL file per agent, for
// callers that need to observe it externally rather than read through the
// Store. The CLI's --watch mode does not call it; it builds the same path
// itself.
func (s *Store) InboxesDir() string { return s.inboxesDir() }

func (s *Store) stateDir() string       { return filepath.Join(s.root, "state") }
func (s *Store) inboxesDir() string     { return filepath.Join(s.root, "inboxes") }
func (s *Store) eventsDir() string      { return filepath.Join(s.root, "events") }
func (s *Store) tasksDir() string       { return filepath.Join(s.root, "tasks") }
func (s *Store) deadLetterDir() string  { return filepath.Join(s.root, "dead-letter") }
func (s *Store) locksDir() string       { return filepath.Join(s.root, "locks") }
func (s *Store) teamJSONPath() string   { return filepath.Join(s.root, "team.json") }
func (s *Store) configJSONPath() string { return filepath.Join(s.root, "config.json") }
func (s *Store) nudgeIndexPath() string { return filepath.Join(s.stateDir(), "nudge-index.json") }

// AckPolicyOverride is a per-type override of the ack-wait policy, as
// stored in config.json.
type AckPolicyOverride struct {
	AckTimeoutSeconds int `json:"ack_timeout_seconds"`
	MaxRetries        int `json:"max_retries"`
}

// TeamConfig is the optional contents of teams/<team>/config.json.
type TeamConfig struct {
	AckPolicy map[string]AckPolicyOverride `json:"ack_policy,omitempty"`
}

// ReadConfig loads config.json, returning a zero-value TeamConfig if the
// file does not exist.
func (s *Store) ReadConfig() (TeamConfig, error) {
	var cfg TeamConfig
	if _, err := os.Stat(s.configJSONPath()); os.IsNotExist(err) {
		return cfg, nil
	}
	if err := fsutil.ReadJSON(s.configJSONPath(), &cfg); err != nil {
		return cfg, errors.NewStoreError("read config.json", err).WithTeam(s.team).WithOp("read_config")
	}
	return cfg, nil
}

func (s *Store) inboxPath(agent string) string {
	return filepath.Join(s.inboxesDir(), agent+".jsonl")
}

func (s *Store) eventLogPath(dateShard string) string {
	return filepath.Join(s.eventsDir(), dateShard+".jsonl")
}

func (s *Store) taskSnapshotPath(taskID string) string {
	return filepath.Join(s.tasksDir(), taskID+".json")
}

func (s *Store) deadLetterPath(dateShard string) string {
	return filepath.Join(s.deadLetterDir(), dateShard+".jsonl")
}

// EnsureLayout idempotently creates every directory this store needs.
func (s *Store) EnsureLayout() error {
	dirs := []string{
		s.root, s.inboxesDir(), s.eventsDir(), s.tasksDir(),
		s.stateDir(), s.deadLetterDir(), s.locksDir(),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return errors.NewStoreError("ensure layout", err).WithTeam(s.team)
		}
	}
	if _, err := os.Stat(s.teamJSONPath()); os.IsNotExist(err) {
		meta := map[string]any{"team": s.team, "created_at": envelope.NowUTC()}
		if err := fsutil.WriteJSONAtomic(s.teamJSONPath(), meta); err != nil {
			return errors.NewStoreError("write team.json", err).WithTeam(s.team)
		}
	}
	return nil
}

// ListAgents enumerates agents by scanning inbox filenames. Supplements the
// core operation set for CLI/status consumers; grounded on the original
// store's agent-listing helper.
func (s *Store) ListAgents() ([]string, error) {
	entries, err := os.ReadDir(s.inboxesDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("list agents", err).WithTeam(s.team)
	}
	var agents []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		const suffix = ".jsonl"
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			agents = append(agents, name[:len(name)-len(suffix)])
		}
	}
	return agents, nil
}

// EnsureAgent validates agent and creates its (empty) inbox file if it
// does not already exist, returning the canonical validated name. Sending
// to an agent that has never been ensured still works — UpsertMessage
// creates the inbox on first write — this exists so `init` can register a
// team's membership up front, before any message has been sent.
func (s *Store) EnsureAgent(agent string) (string, error) {
	validAgent, err := identifier.Validate("agent", agent)
	if err != nil {
		return "", err
	}
	path := s.inboxPath(validAgent)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return "", errors.NewStoreError("ensure agent", err).WithTeam(s.team)
		}
		_ = f.Close()
	}
	return validAgent, nil
}
