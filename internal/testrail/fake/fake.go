// Package fake provides an in-memory testrail.API for tests.
package fake

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"featurerail/internal/testrail"
)

// Server is an in-memory TestRail. Ids are assigned sequentially per
// resource starting at the configured seeds.
type Server struct {
	mu sync.Mutex

	Project     testrail.Project
	Suites      []testrail.Suite
	Sections    []testrail.Section
	Cases       []testrail.Case
	Plans       map[int]*testrail.Plan
	Tests       map[int][]testrail.Test
	Results     map[int][][]testrail.Result
	Configs     []testrail.ConfigGroup
	Statuses    []testrail.Status
	Priorities  []testrail.Priority
	CaseTypes   []testrail.CaseType
	Templates   []testrail.Template
	Calls       map[string]int
	NextCaseID  int
	nextSuiteID int
	nextSecID   int
	nextRunID   int
	nextEntryID int
	nextTestID  int

	// Fail makes the named operation return an error.
	Fail map[string]error
}

var _ testrail.API = (*Server)(nil)

// New returns a server with the default statuses, priorities, case types and templates.
func New() *Server {
	return &Server{
		Project: testrail.Project{ID: 1, Name: "Shop"},
		Plans:   map[int]*testrail.Plan{},
		Tests:   map[int][]testrail.Test{},
		Results: map[int][][]testrail.Result{},
		Statuses: []testrail.Status{
			{ID: 1, Name: "passed"}, {ID: 2, Name: "blocked"}, {ID: 3, Name: "untested"},
			{ID: 4, Name: "retest"}, {ID: 5, Name: "failed"},
		},
		Priorities: []testrail.Priority{
			{ID: 1, Name: "Low"}, {ID: 2, Name: "Medium"}, {ID: 3, Name: "High"}, {ID: 4, Name: "Critical"},
		},
		CaseTypes:   []testrail.CaseType{{ID: 6, Name: "Functional"}, {ID: 9, Name: "Regression"}},
		Templates:   []testrail.Template{{ID: 1, Name: "Test Case (Text)"}, {ID: 2, Name: "Test Case (Steps)"}},
		Calls:       map[string]int{},
		Fail:        map[string]error{},
		NextCaseID:  1,
		nextSuiteID: 1,
		nextSecID:   1,
		nextRunID:   1,
		nextEntryID: 1,
		nextTestID:  1,
	}
}

// Count returns how many times an operation was called.
func (s *Server) Count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[op]
}

// Creates returns the number of create operations issued.
func (s *Server) Creates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for op, n := range s.Calls {
		if strings.HasPrefix(op, "Add") {
			total += n
		}
	}
	return total
}

func (s *Server) call(op string) error {
	s.Calls[op]++
	return s.Fail[op]
}

// AddConfigGroup registers a configuration group.
func (s *Server) AddConfigGroup(name string, configs ...testrail.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Configs = append(s.Configs, testrail.ConfigGroup{ID: len(s.Configs) + 1, Name: name, ProjectID: s.Project.ID, Configs: configs})
}

// AddPlan registers an empty plan.
func (s *Server) AddPlan(id int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Plans[id] = &testrail.Plan{ID: id, Name: name}
}

// AddTest places a test in a run.
func (s *Server) AddTest(runID int, test testrail.Test) {
	s.mu.Lock()
	defer s.mu.Unlock()
	test.RunID = runID
	s.Tests[runID] = append(s.Tests[runID], test)
}

func (s *Server) GetProject(ctx context.Context, projectID int) (testrail.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetProject"); err != nil {
		return testrail.Project{}, err
	}
	if projectID != s.Project.ID {
		return testrail.Project{}, &testrail.APIError{StatusCode: 400, Method: "GET", Endpoint: fmt.Sprintf("get_project/%d", projectID), Message: "not a valid or accessible project"}
	}
	return s.Project, nil
}

func (s *Server) GetSuites(ctx context.Context, projectID int) ([]testrail.Suite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetSuites"); err != nil {
		return nil, err
	}
	return append([]testrail.Suite(nil), s.Suites...), nil
}

func (s *Server) AddSuite(ctx context.Context, projectID int, suite testrail.Suite) (testrail.Suite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("AddSuite"); err != nil {
		return testrail.Suite{}, err
	}
	suite.ID = s.nextSuiteID
	suite.ProjectID = projectID
	s.nextSuiteID++
	s.Suites = append(s.Suites, suite)
	return suite, nil
}

func (s *Server) GetSections(ctx context.Context, projectID, suiteID int) ([]testrail.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetSections"); err != nil {
		return nil, err
	}
	out := make([]testrail.Section, 0)
	for _, section := range s.Sections {
		if section.SuiteID == suiteID {
			out = append(out, section)
		}
	}
	return out, nil
}

func (s *Server) AddSection(ctx context.Context, projectID int, section testrail.Section) (testrail.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("AddSection"); err != nil {
		return testrail.Section{}, err
	}
	section.ID = s.nextSecID
	s.nextSecID++
	s.Sections = append(s.Sections, section)
	return section, nil
}

func (s *Server) AddCase(ctx context.Context, sectionID int, c testrail.Case) (testrail.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("AddCase"); err != nil {
		return testrail.Case{}, err
	}
	c.ID = s.NextCaseID
	c.SectionID = sectionID
	s.NextCaseID++
	s.Cases = append(s.Cases, c)
	return c, nil
}

func (s *Server) UpdateCase(ctx context.Context, caseID int, c testrail.Case) (testrail.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("UpdateCase"); err != nil {
		return testrail.Case{}, err
	}
	for i := range s.Cases {
		if s.Cases[i].ID == caseID {
			c.ID = caseID
			c.SectionID = s.Cases[i].SectionID
			s.Cases[i] = c
			return c, nil
		}
	}
	c.ID = caseID
	s.Cases = append(s.Cases, c)
	return c, nil
}

// Case returns a stored case by id.
func (s *Server) Case(id int) (testrail.Case, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.Cases {
		if c.ID == id {
			return c, true
		}
	}
	return testrail.Case{}, false
}

func (s *Server) GetPlan(ctx context.Context, planID int) (testrail.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetPlan"); err != nil {
		return testrail.Plan{}, err
	}
	plan, ok := s.Plans[planID]
	if !ok {
		return testrail.Plan{}, &testrail.APIError{StatusCode: 400, Method: "GET", Endpoint: fmt.Sprintf("get_plan/%d", planID), Message: "unknown plan"}
	}
	out := *plan
	out.Entries = append([]testrail.PlanEntry(nil), plan.Entries...)
	return out, nil
}

// AddPlanEntry creates one run per element of entry.Runs, naming each run
// after the entry and its configuration names. Runs including all cases get
// one test per case of the suite.
func (s *Server) AddPlanEntry(ctx context.Context, planID int, entry testrail.PlanEntry) (testrail.PlanEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("AddPlanEntry"); err != nil {
		return testrail.PlanEntry{}, err
	}
	plan, ok := s.Plans[planID]
	if !ok {
		return testrail.PlanEntry{}, fmt.Errorf("unknown plan %d", planID)
	}
	entry.ID = fmt.Sprintf("entry-%d", s.nextEntryID)
	s.nextEntryID++
	runs := make([]testrail.Run, 0, len(entry.Runs))
	for _, run := range entry.Runs {
		run.ID = s.nextRunID
		s.nextRunID++
		run.SuiteID = entry.SuiteID
		run.Name = entry.Name
		run.Config = s.configNames(run.ConfigIDs)
		if run.IncludeAll {
			s.populateRun(run)
		}
		runs = append(runs, run)
	}
	entry.Runs = runs
	plan.Entries = append(plan.Entries, entry)
	return entry, nil
}

func (s *Server) populateRun(run testrail.Run) {
	for _, c := range s.Cases {
		if c.SuiteID != run.SuiteID {
			continue
		}
		s.Tests[run.ID] = append(s.Tests[run.ID], testrail.Test{
			ID:                   s.nextTestID,
			CaseID:               c.ID,
			RunID:                run.ID,
			Title:                c.Title,
			StatusID:             3,
			CustomDataSet:        c.CustomDataSet,
			CustomStepsSeparated: append([]testrail.CaseStep(nil), c.CustomStepsSeparated...),
		})
		s.nextTestID++
	}
}

func (s *Server) configNames(ids []int) string {
	names := make([]string, 0, len(ids))
	for _, cfg := range testrail.FlattenConfigs(s.Configs) {
		for _, id := range ids {
			if cfg.ID == id {
				names = append(names, cfg.Name)
			}
		}
	}
	return strings.Join(names, ", ")
}

// RunIDs returns the ids of every run in a plan, sorted.
func (s *Server) RunIDs(planID int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0)
	if plan, ok := s.Plans[planID]; ok {
		for _, entry := range plan.Entries {
			for _, run := range entry.Runs {
				ids = append(ids, run.ID)
			}
		}
	}
	sort.Ints(ids)
	return ids
}

func (s *Server) GetTests(ctx context.Context, runID int) ([]testrail.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetTests"); err != nil {
		return nil, err
	}
	return append([]testrail.Test(nil), s.Tests[runID]...), nil
}

func (s *Server) AddResults(ctx context.Context, runID int, results []testrail.Result) ([]testrail.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("AddResults"); err != nil {
		return nil, err
	}
	s.Results[runID] = append(s.Results[runID], results)
	return results, nil
}

func (s *Server) GetConfigs(ctx context.Context, projectID int) ([]testrail.ConfigGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetConfigs"); err != nil {
		return nil, err
	}
	return append([]testrail.ConfigGroup(nil), s.Configs...), nil
}

func (s *Server) GetStatuses(ctx context.Context) ([]testrail.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetStatuses"); err != nil {
		return nil, err
	}
	return append([]testrail.Status(nil), s.Statuses...), nil
}

func (s *Server) GetPriorities(ctx context.Context) ([]testrail.Priority, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetPriorities"); err != nil {
		return nil, err
	}
	return append([]testrail.Priority(nil), s.Priorities...), nil
}

func (s *Server) GetCaseTypes(ctx context.Context) ([]testrail.CaseType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetCaseTypes"); err != nil {
		return nil, err
	}
	return append([]testrail.CaseType(nil), s.CaseTypes...), nil
}

func (s *Server) GetTemplates(ctx context.Context, projectID int) ([]testrail.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetTemplates"); err != nil {
		return nil, err
	}
	return append([]testrail.Template(nil), s.Templates...), nil
}
