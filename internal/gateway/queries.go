package gateway

import (
	"context"
	"time"

	"github.com/machinebox/graphql"
	"github.com/robby/reqboard/internal/domain"
	"github.com/sirupsen/logrus"
)

// recordFields is the selection set shared by every query returning requirements.
const recordFields = `
	id
	customId
	title
	description
	status
	priority
	startDate
	dueDate
	updatedAt
	projectId
	assignedTo {
		id
		name
	}
`

// recordNode mirrors one requirement in a GraphQL response.
type recordNode struct {
	ID          string     `json:"id"`
	CustomID    string     `json:"customId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"startDate"`
	DueDate     *time.Time `json:"dueDate"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ProjectID   string     `json:"projectId"`
	AssignedTo  *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"assignedTo"`
}

// toRecord converts a node into a domain record. The second result is false
// when the node carries a status outside the fixed enum.
func (n recordNode) toRecord() (domain.Record, bool) {
	status, err := domain.ParseStatus(n.Status)
	if err != nil {
		return domain.Record{}, false
	}

	r := domain.Record{
		ID:          n.ID,
		CustomID:    n.CustomID,
		Title:       n.Title,
		Description: n.Description,
		Status:      status,
		Priority:    n.Priority,
		StartDate:   n.StartDate,
		DueDate:     n.DueDate,
		UpdatedAt:   n.UpdatedAt,
		ProjectID:   n.ProjectID,
	}
	if n.AssignedTo != nil && n.AssignedTo.ID != "" {
		r.AssignedTo = &domain.User{ID: n.AssignedTo.ID, Name: n.AssignedTo.Name}
	}
	return r, true
}

// toRecords converts nodes, dropping (and logging) records with an unknown status.
func (c *Client) toRecords(nodes []recordNode) []domain.Record {
	records := make([]domain.Record, 0, len(nodes))
	for _, node := range nodes {
		r, ok := node.toRecord()
		if !ok {
			c.log.WithFields(logrus.Fields{
				"record": node.ID,
				"status": node.Status,
			}).Warn("dropping record with unknown status")
			continue
		}
		records = append(records, r)
	}
	return records
}

// FetchRecordsPage fetches one server-side window of a project's requirements.
// pageIndex is zero-based. An empty searchTerm matches every record.
func (c *Client) FetchRecordsPage(ctx context.Context, projectID string, pageIndex, pageSize int, searchTerm string) (domain.Page, error) {
	req := graphql.NewRequest(`
		query($projectId: ID!, $page: Int!, $pageSize: Int!, $search: String) {
			requirements(projectId: $projectId, page: $page, pageSize: $pageSize, search: $search) {
				total
				nodes {` + recordFields + `}
			}
		}
	`)

	req.Var("projectId", projectID)
	req.Var("page", pageIndex+1) // The service numbers pages from 1
	req.Var("pageSize", pageSize)
	if searchTerm != "" {
		req.Var("search", searchTerm)
	} else {
		req.Var("search", nil)
	}

	var resp struct {
		Requirements struct {
			Total int          `json:"total"`
			Nodes []recordNode `json:"nodes"`
		} `json:"requirements"`
	}

	if err := c.makeRequest(ctx, "fetch requirements page", req, &resp); err != nil {
		return domain.Page{}, err
	}

	return domain.Page{
		Records: c.toRecords(resp.Requirements.Nodes),
		Total:   resp.Requirements.Total,
	}, nil
}

// FetchAllRecords fetches the whole unfiltered collection of a project using
// the same paged query with an oversized page.
func (c *Client) FetchAllRecords(ctx context.Context, projectID string) ([]domain.Record, error) {
	page, err := c.FetchRecordsPage(ctx, projectID, 0, ShadowPageSize, "")
	if err != nil {
		return nil, err
	}
	return page.Records, nil
}

// Viewer returns the authenticated user with their role.
func (c *Client) Viewer(ctx context.Context) (domain.User, error) {
	req := graphql.NewRequest(`
		query {
			viewer {
				id
				name
				role
			}
		}
	`)

	var resp struct {
		Viewer struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Role string `json:"role"`
		} `json:"viewer"`
	}

	if err := c.makeRequest(ctx, "fetch viewer", req, &resp); err != nil {
		return domain.User{}, err
	}

	return domain.User{
		ID:   resp.Viewer.ID,
		Name: resp.Viewer.Name,
		Role: domain.Role(resp.Viewer.Role),
	}, nil
}

// projectNode mirrors a project in a GraphQL response.
type projectNode struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	OwnerID string `json:"ownerId"`
	Members []struct {
		ID string `json:"id"`
	} `json:"members"`
}

func (n projectNode) toProject() domain.Project {
	p := domain.Project{
		ID:      n.ID,
		Name:    n.Name,
		Status:  n.Status,
		OwnerID: n.OwnerID,
	}
	if len(n.Members) > 0 {
		p.Members = make([]string, 0, len(n.Members))
		for _, m := range n.Members {
			p.Members = append(p.Members, m.ID)
		}
	}
	return p
}

// GetProject fetches a single project with its membership.
func (c *Client) GetProject(ctx context.Context, projectID string) (domain.Project, error) {
	req := graphql.NewRequest(`
		query($id: ID!) {
			project(id: $id) {
				id
				name
				status
				ownerId
				members {
					id
				}
			}
		}
	`)
	req.Var("id", projectID)

	var resp struct {
		Project *projectNode `json:"project"`
	}

	if err := c.makeRequest(ctx, "fetch project", req, &resp); err != nil {
		return domain.Project{}, err
	}
	if resp.Project == nil {
		return domain.Project{}, domain.NewGatewayError(domain.KindServer, "project "+projectID+" not found", nil)
	}

	return resp.Project.toProject(), nil
}

// ListProjects lists the projects visible to the viewer.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	req := graphql.NewRequest(`
		query {
			projects {
				id
				name
				status
				ownerId
				members {
					id
				}
			}
		}
	`)

	var resp struct {
		Projects []projectNode `json:"projects"`
	}

	if err := c.makeRequest(ctx, "list projects", req, &resp); err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(resp.Projects))
	for _, node := range resp.Projects {
		projects = append(projects, node.toProject())
	}
	return projects, nil
}
