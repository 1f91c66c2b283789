package gateway

import (
	"context"
	"time"

	"github.com/machinebox/graphql"
	"github.com/robby/reqboard/internal/domain"
)

// UpdateRecordStatus sends the full mutable field set of a requirement back to
// the service. This is used to move requirements between columns in the board view.
// The patch is validated locally first and rejected with a validation error
// without a network call when malformed.
func (c *Client) UpdateRecordStatus(ctx context.Context, projectID, recordID string, patch domain.RecordPatch) (domain.Record, error) {
	if err := patch.Validate(); err != nil {
		return domain.Record{}, err
	}

	req := graphql.NewRequest(`
		mutation($projectId: ID!, $id: ID!, $input: RequirementInput!) {
			updateRequirement(projectId: $projectId, id: $id, input: $input) {` + recordFields + `}
		}
	`)

	req.Var("projectId", projectID)
	req.Var("id", recordID)
	req.Var("input", patchInput(patch))

	var resp struct {
		UpdateRequirement *recordNode `json:"updateRequirement"`
	}

	if err := c.makeRequest(ctx, "update requirement", req, &resp); err != nil {
		return domain.Record{}, err
	}
	if resp.UpdateRequirement == nil {
		return domain.Record{}, domain.NewGatewayError(domain.KindServer, "update requirement returned no record", nil)
	}

	record, ok := resp.UpdateRequirement.toRecord()
	if !ok {
		return domain.Record{}, domain.NewGatewayError(domain.KindServer,
			"update requirement returned unknown status "+resp.UpdateRequirement.Status, nil)
	}
	return record, nil
}

// patchInput renders a patch as the RequirementInput variable.
func patchInput(p domain.RecordPatch) map[string]interface{} {
	input := map[string]interface{}{
		"title":       p.Title,
		"description": p.Description,
		"status":      string(p.Status),
		"priority":    p.Priority,
		"projectId":   p.ProjectID,
		"assignedTo":  nil,
		"startDate":   nil,
		"dueDate":     nil,
	}
	if p.AssignedToID != "" {
		input["assignedTo"] = p.AssignedToID
	}
	if p.StartDate != nil {
		input["startDate"] = p.StartDate.Format(time.RFC3339)
	}
	if p.DueDate != nil {
		input["dueDate"] = p.DueDate.Format(time.RFC3339)
	}
	return input
}
