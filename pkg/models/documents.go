package models

// ModuleFlowDocument is the scenario blueprint imported by module-flow platforms.
type ModuleFlowDocument struct {
	Name     string              `json:"name"`
	Flow     []*ModuleFlowModule `json:"flow"`
	Metadata ScenarioMetadata    `json:"metadata"`
}

// ModuleFlowModule is one module of a scenario flow.
type ModuleFlowModule struct {
	ID         int            `json:"id"`
	Module     string         `json:"module"`
	Version    int            `json:"version"`
	Parameters map[string]any `json:"parameters"`
	Mapper     map[string]any `json:"mapper"`
	Metadata   ModuleMetadata `json:"metadata"`
}

// ModuleMetadata carries the designer layout of a module.
type ModuleMetadata struct {
	Designer   Designer      `json:"designer"`
	Restore    ModuleRestore `json:"restore"`
	Parameters []any         `json:"parameters"`
	Expect     []any         `json:"expect"`
}

// Designer is a layout coordinate on the scenario canvas.
type Designer struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ModuleRestore holds the restore hints of a module.
type ModuleRestore struct {
	Parameters map[string]any `json:"parameters"`
	Expect     map[string]any `json:"expect"`
}

// ScenarioMetadata is the scenario-level block. Its values are static defaults.
type ScenarioMetadata struct {
	Instant  bool             `json:"instant"`
	Version  int              `json:"version"`
	Scenario ScenarioSettings `json:"scenario"`
	Designer ScenarioDesigner `json:"designer"`
	Zone     string           `json:"zone"`
}

// ScenarioSettings controls iteration limits, error budget and commit behavior.
type ScenarioSettings struct {
	Roundtrips            int  `json:"roundtrips"`
	MaxErrors             int  `json:"maxErrors"`
	AutoCommit            bool `json:"autoCommit"`
	AutoCommitTriggerLast bool `json:"autoCommitTriggerLast"`
	Sequential            bool `json:"sequential"`
	Confidential          bool `json:"confidential"`
	DataLoss              bool `json:"dataloss"`
	DLQ                   bool `json:"dlq"`
	FreshVariables        bool `json:"freshVariables"`
}

// ScenarioDesigner lists modules not attached to the flow.
type ScenarioDesigner struct {
	Orphans []any `json:"orphans"`
}

// TriggerActionDocument is the document imported by trigger/action platforms.
type TriggerActionDocument struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Trigger     TriggerSpec   `json:"trigger"`
	Actions     []*ActionSpec `json:"actions"`
}

// TriggerSpec is the single trigger of a trigger/action document.
type TriggerSpec struct {
	App    string         `json:"app"`
	Event  string         `json:"event"`
	Title  string         `json:"title"`
	Config map[string]any `json:"config"`
}

// ActionSpec is one action following the trigger.
type ActionSpec struct {
	ID     string         `json:"id"`
	App    string         `json:"app"`
	Action string         `json:"action"`
	Title  string         `json:"title"`
	Config map[string]any `json:"config"`
}

// NodeGraphDocument is the document imported by node-graph platforms.
type NodeGraphDocument struct {
	Name        string                          `json:"name"`
	Nodes       []*GraphNode                    `json:"nodes"`
	Connections map[string]GraphNodeConnections `json:"connections"`
	Settings    GraphSettings                   `json:"settings"`
}

// GraphNode is one node of a node-graph document.
type GraphNode struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion int            `json:"typeVersion"`
	Position    [2]int         `json:"position"`
	Parameters  map[string]any `json:"parameters"`
	Credentials map[string]any `json:"credentials"`
}

// GraphNodeConnections are the outgoing connections of a node, grouped by output.
type GraphNodeConnections struct {
	Main [][]GraphConnection `json:"main"`
}

// GraphConnection points at the node receiving the output.
type GraphConnection struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// GraphSettings are workflow-level settings of a node-graph document.
type GraphSettings struct {
	ExecutionOrder string `json:"executionOrder"`
}
