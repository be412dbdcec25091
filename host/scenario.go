package host

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/screeps-wasm/errors"
	"github.com/wippyai/screeps-wasm/game"
	"github.com/wippyai/screeps-wasm/layout"
)

//go:embed scenario.schema.json
var scenarioSchemaJSON string

var (
	scenarioSchema     *jsonschema.Schema
	scenarioSchemaErr  error
	scenarioSchemaOnce sync.Once
)

func compiledScenarioSchema() (*jsonschema.Schema, error) {
	scenarioSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("scenario.schema.json", bytes.NewReader([]byte(scenarioSchemaJSON))); err != nil {
			scenarioSchemaErr = err
			return
		}
		scenarioSchema, scenarioSchemaErr = c.Compile("scenario.schema.json")
	})
	return scenarioSchema, scenarioSchemaErr
}

// Scenario is the YAML description of a starting world.
type Scenario struct {
	Player  string           `yaml:"player"`
	Objects []ScenarioObject `yaml:"objects"`
}

// ScenarioObject is one object of a Scenario. Fields that do not apply to
// the kind are ignored.
type ScenarioObject struct {
	Store            *ScenarioStore    `yaml:"store"`
	Spawning         *ScenarioSpawning `yaml:"spawning"`
	ID               string            `yaml:"id"`
	Kind             string            `yaml:"kind"`
	Room             string            `yaml:"room"`
	Owner            string            `yaml:"owner"`
	Hits             int32             `yaml:"hits"`
	HitsMax          int32             `yaml:"hits_max"`
	TicksToDecay     int32             `yaml:"ticks_to_decay"`
	Level            int32             `yaml:"level"`
	Progress         int32             `yaml:"progress"`
	ProgressTotal    int32             `yaml:"progress_total"`
	TicksToDowngrade int32             `yaml:"ticks_to_downgrade"`
	UpgradeBlocked   int32             `yaml:"upgrade_blocked"`
	Energy           int32             `yaml:"energy"`
	EnergyCapacity   int32             `yaml:"energy_capacity"`
}

type ScenarioStore struct {
	Energy   int32 `yaml:"energy"`
	Capacity int32 `yaml:"capacity"`
}

type ScenarioSpawning struct {
	Name          string   `yaml:"name"`
	Body          []string `yaml:"body"`
	Directions    []uint8  `yaml:"directions"`
	RemainingTime *int32   `yaml:"remaining_time"`
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse scenario yaml")
	}
	if err := validateScenario(doc); err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode scenario")
	}
	return &sc, nil
}

// validateScenario checks the generic YAML tree against the embedded schema.
// The tree goes through JSON so the validator sees JSON value types.
func validateScenario(doc any) error {
	schema, err := compiledScenarioSchema()
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "compile scenario schema")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "scenario is not representable as JSON")
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "re-read scenario")
	}
	if err := schema.Validate(v); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "scenario does not match schema")
	}
	return nil
}

// LoadScenario reads a scenario from r.
func LoadScenario(r io.Reader) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read scenario")
	}
	return ParseScenario(data)
}

// LoadScenarioFile reads a scenario from path.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "open scenario")
	}
	defer f.Close()
	return LoadScenario(f)
}

// World builds the world described by the scenario. Objects without an id
// get a generated one; objects owned by the player are "mine".
func (sc *Scenario) World() (*World, error) {
	player, err := game.ParseName(sc.Player)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "player")
	}
	w := NewWorld(player)
	for i, so := range sc.Objects {
		o, err := so.object(sc.Player)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, fmt.Sprintf("object %d", i))
		}
		if err := w.Add(o); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (so ScenarioObject) object(player string) (*Object, error) {
	kind, err := layout.ParseKind(so.Kind)
	if err != nil {
		return nil, err
	}
	id := game.NewID()
	if so.ID != "" {
		if id, err = game.ParseID(so.ID); err != nil {
			return nil, err
		}
	}
	owner, err := game.ParseName(so.Owner)
	if err != nil {
		return nil, err
	}

	o := &Object{
		ID:               id,
		Kind:             kind,
		Room:             so.Room,
		Owner:            owner,
		My:               so.Owner != "" && so.Owner == player,
		Hits:             so.Hits,
		HitsMax:          so.HitsMax,
		TicksToDecay:     so.TicksToDecay,
		Level:            so.Level,
		Progress:         so.Progress,
		ProgressTotal:    so.ProgressTotal,
		TicksToDowngrade: so.TicksToDowngrade,
		UpgradeBlocked:   so.UpgradeBlocked,
		Energy:           so.Energy,
		EnergyCapacity:   so.EnergyCapacity,
	}
	if so.Store != nil {
		o.Store = game.Store{Energy: so.Store.Energy, Capacity: so.Store.Capacity}
	}
	if so.Spawning != nil {
		if kind != layout.KindSpawn {
			return nil, fmt.Errorf("spawning set on a %s", kind)
		}
		sp, err := so.Spawning.spawning()
		if err != nil {
			return nil, err
		}
		o.Spawning = sp
	}
	return o, nil
}

func (ss ScenarioSpawning) spawning() (*Spawning, error) {
	body := make([]game.BodyPart, len(ss.Body))
	for i, name := range ss.Body {
		p, err := game.ParseBodyPart(name)
		if err != nil {
			return nil, err
		}
		body[i] = p
	}
	dirs := make([]game.Direction, len(ss.Directions))
	for i, d := range ss.Directions {
		dirs[i] = game.Direction(d)
	}
	if _, err := game.PackDirections(dirs...); err != nil {
		return nil, err
	}
	need := int32(game.SpawnTimePerPart * len(body))
	remaining := need
	if ss.RemainingTime != nil {
		remaining = *ss.RemainingTime
	}
	return &Spawning{
		Name:          ss.Name,
		Body:          body,
		Directions:    dirs,
		NeedTime:      need,
		RemainingTime: remaining,
		ID:            game.NewID(),
	}, nil
}
