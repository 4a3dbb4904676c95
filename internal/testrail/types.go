package testrail

// Project is a TestRail project.
type Project struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Suite groups the cases of one feature suite.
type Suite struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ProjectID   int    `json:"project_id,omitempty"`
	IsBaseline  bool   `json:"is_baseline"`
	IsCompleted bool   `json:"is_completed"`
	IsMaster    bool   `json:"is_master"`
}

// Section is a node below a suite. Sub-sections carry a ParentID.
type Section struct {
	ID           int    `json:"id,omitempty"`
	SuiteID      int    `json:"suite_id"`
	ParentID     *int   `json:"parent_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Depth        int    `json:"depth"`
	DisplayOrder int    `json:"display_order"`
}

// CaseStep is one entry of custom_steps_separated.
type CaseStep struct {
	Content  string `json:"content"`
	Expected string `json:"expected"`
}

// Case is a test case definition.
type Case struct {
	ID                   int        `json:"id,omitempty"`
	Title                string     `json:"title"`
	SectionID            int        `json:"section_id,omitempty"`
	SuiteID              int        `json:"suite_id,omitempty"`
	PriorityID           int        `json:"priority_id,omitempty"`
	TypeID               int        `json:"type_id,omitempty"`
	TemplateID           int        `json:"template_id,omitempty"`
	Estimate             string     `json:"estimate,omitempty"`
	Refs                 string     `json:"refs"`
	CustomTags           string     `json:"custom_tags"`
	CustomAutomationType string     `json:"custom_automation_type"`
	CustomDataSet        *string    `json:"custom_data_set"`
	CustomPreconds       string     `json:"custom_preconds"`
	CustomStepsSeparated []CaseStep `json:"custom_steps_separated"`
}

// Plan is a test plan with its entries.
type Plan struct {
	ID      int         `json:"id"`
	Name    string      `json:"name"`
	Entries []PlanEntry `json:"entries"`
}

// PlanEntry binds a suite to configuration-scoped runs.
type PlanEntry struct {
	ID         string `json:"id,omitempty"`
	SuiteID    int    `json:"suite_id"`
	Name       string `json:"name"`
	IncludeAll bool   `json:"include_all"`
	ConfigIDs  []int  `json:"config_ids,omitempty"`
	Runs       []Run  `json:"runs"`
}

// Run is a configuration-scoped run inside a plan entry.
type Run struct {
	ID         int    `json:"id,omitempty"`
	SuiteID    int    `json:"suite_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Config     string `json:"config,omitempty"`
	ConfigIDs  []int  `json:"config_ids,omitempty"`
	IncludeAll bool   `json:"include_all"`
}

// Test is a case instance inside a run.
type Test struct {
	ID                   int        `json:"id"`
	CaseID               int        `json:"case_id"`
	RunID                int        `json:"run_id"`
	Title                string     `json:"title"`
	StatusID             int        `json:"status_id"`
	CustomDataSet        *string    `json:"custom_data_set"`
	CustomStepsSeparated []CaseStep `json:"custom_steps_separated"`
}

// StepResult is the outcome of one case step.
type StepResult struct {
	Content  string `json:"content"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	StatusID int    `json:"status_id"`
}

// Result is a submitted test result.
type Result struct {
	ID                int          `json:"id,omitempty"`
	TestID            int          `json:"test_id"`
	StatusID          int          `json:"status_id"`
	Comment           string       `json:"comment"`
	CustomStepResults []StepResult `json:"custom_step_results"`
}

// ConfigGroup holds the configurations of one group.
type ConfigGroup struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	ProjectID int      `json:"project_id"`
	Configs   []Config `json:"configs"`
}

// Config is one configuration such as a browser or platform.
type Config struct {
	ID      int    `json:"id"`
	GroupID int    `json:"group_id"`
	Name    string `json:"name"`
}

// Status is a result status definition.
type Status struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Priority is a case priority.
type Priority struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CaseType is a case type such as Functional.
type CaseType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Template is a case template such as Test Case (Steps).
type Template struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FlattenConfigs returns the configurations of all groups in group order.
func FlattenConfigs(groups []ConfigGroup) []Config {
	configs := make([]Config, 0)
	for _, group := range groups {
		configs = append(configs, group.Configs...)
	}
	return configs
}
