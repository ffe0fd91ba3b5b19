package github

import (
	"context"
	"fmt"

	"github.com/goblinsan/gh-burndown/pkg/types"
	"github.com/shurcooL/githubv4"
)

// projectV2 is the selection shared by every owner type. A single page is
// fetched; GitHub caps connections at 100 nodes.
type projectV2 struct {
	Title githubv4.String
	Items struct {
		Nodes []projectItemNode
	} `graphql:"items(first: 100)"`
}

type projectItemNode struct {
	Content     *itemContent
	FieldValues struct {
		Nodes []fieldValueNode
	} `graphql:"fieldValues(first: 50)"`
}

type itemContent struct {
	Typename    githubv4.String `graphql:"__typename"`
	Issue       issueContent    `graphql:"... on Issue"`
	PullRequest prContent       `graphql:"... on PullRequest"`
}

type issueContent struct {
	Title     githubv4.String
	State     githubv4.String
	CreatedAt githubv4.String
	ClosedAt  *githubv4.String
	Labels    struct {
		Nodes []struct {
			Name githubv4.String
		}
	} `graphql:"labels(first: 50)"`
}

type prContent struct {
	Title     githubv4.String
	State     githubv4.String
	CreatedAt githubv4.String
	ClosedAt  *githubv4.String
}

// fieldRef resolves the name of whichever field configuration a value belongs to.
type fieldRef struct {
	Common struct {
		Name githubv4.String
	} `graphql:"... on ProjectV2FieldCommon"`
}

type fieldValueNode struct {
	Typename     githubv4.String `graphql:"__typename"`
	SingleSelect struct {
		Name  githubv4.String
		Field fieldRef
	} `graphql:"... on ProjectV2ItemFieldSingleSelectValue"`
	Text struct {
		Text  githubv4.String
		Field fieldRef
	} `graphql:"... on ProjectV2ItemFieldTextValue"`
	Number struct {
		Number *githubv4.Float
		Field  fieldRef
	} `graphql:"... on ProjectV2ItemFieldNumberValue"`
	Iteration struct {
		Title githubv4.String
		Field fieldRef
	} `graphql:"... on ProjectV2ItemFieldIterationValue"`
}

type orgProjectQuery struct {
	Organization *struct {
		ProjectV2 *projectV2 `graphql:"projectV2(number: $number)"`
	} `graphql:"organization(login: $org)"`
}

type repoProjectQuery struct {
	Repository *struct {
		ProjectV2 *projectV2 `graphql:"projectV2(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $repo)"`
}

type userProjectQuery struct {
	User *struct {
		ProjectV2 *projectV2 `graphql:"projectV2(number: $number)"`
	} `graphql:"user(login: $login)"`
}

// FetchProject issues the project query for ref and returns the board items.
// Any failure, including a response without a projectV2 object, is an error;
// partial data is never returned.
func (c *Client) FetchProject(ctx context.Context, ref types.ProjectRef) (*types.RawProject, error) {
	target := describe(ref)
	variables := map[string]interface{}{
		"number": githubv4.Int(ref.Number),
	}

	var project *projectV2
	switch ref.Type {
	case types.ProjectTypeOrganization, "":
		var query orgProjectQuery
		variables["org"] = githubv4.String(ref.Owner)
		if err := c.GraphQL.Query(ctx, &query, variables); err != nil {
			return nil, mapError(err, target)
		}
		if query.Organization != nil {
			project = query.Organization.ProjectV2
		}
	case types.ProjectTypeRepository:
		var query repoProjectQuery
		variables["owner"] = githubv4.String(ref.Owner)
		variables["repo"] = githubv4.String(ref.Repo)
		if err := c.GraphQL.Query(ctx, &query, variables); err != nil {
			return nil, mapError(err, target)
		}
		if query.Repository != nil {
			project = query.Repository.ProjectV2
		}
	case types.ProjectTypeUser:
		var query userProjectQuery
		variables["login"] = githubv4.String(ref.Owner)
		if err := c.GraphQL.Query(ctx, &query, variables); err != nil {
			return nil, mapError(err, target)
		}
		if query.User != nil {
			project = query.User.ProjectV2
		}
	default:
		return nil, fmt.Errorf("unsupported project type %q", ref.Type)
	}

	if project == nil {
		return nil, fmt.Errorf("%s: projectV2 missing from response: %w", target, ErrProjectNotFound)
	}
	return project.toRaw(), nil
}

func describe(ref types.ProjectRef) string {
	switch ref.Type {
	case types.ProjectTypeRepository:
		return fmt.Sprintf("project #%d of repository %s/%s", ref.Number, ref.Owner, ref.Repo)
	case types.ProjectTypeUser:
		return fmt.Sprintf("project #%d of user %s", ref.Number, ref.Owner)
	default:
		return fmt.Sprintf("project #%d of organization %s", ref.Number, ref.Owner)
	}
}

func (p *projectV2) toRaw() *types.RawProject {
	raw := &types.RawProject{
		Title: string(p.Title),
		Items: make([]types.RawItem, 0, len(p.Items.Nodes)),
	}
	for _, node := range p.Items.Nodes {
		item := types.RawItem{Content: node.Content.toRaw()}
		for _, fv := range node.FieldValues.Nodes {
			if v, ok := fv.toRaw(); ok {
				item.FieldValues = append(item.FieldValues, v)
			}
		}
		raw.Items = append(raw.Items, item)
	}
	return raw
}

// toRaw returns nil for anything that is not an issue or pull request.
func (c *itemContent) toRaw() *types.ItemContent {
	if c == nil {
		return nil
	}
	switch types.ContentKind(c.Typename) {
	case types.ContentIssue:
		content := &types.ItemContent{
			Kind:      types.ContentIssue,
			Title:     string(c.Issue.Title),
			State:     string(c.Issue.State),
			CreatedAt: string(c.Issue.CreatedAt),
			ClosedAt:  deref(c.Issue.ClosedAt),
		}
		for _, l := range c.Issue.Labels.Nodes {
			content.Labels = append(content.Labels, string(l.Name))
		}
		return content
	case types.ContentPullRequest:
		return &types.ItemContent{
			Kind:      types.ContentPullRequest,
			Title:     string(c.PullRequest.Title),
			State:     string(c.PullRequest.State),
			CreatedAt: string(c.PullRequest.CreatedAt),
			ClosedAt:  deref(c.PullRequest.ClosedAt),
		}
	}
	return nil
}

func (v fieldValueNode) toRaw() (types.FieldValue, bool) {
	switch v.Typename {
	case "ProjectV2ItemFieldSingleSelectValue":
		return types.FieldValue{
			Kind:  types.FieldSingleSelect,
			Field: string(v.SingleSelect.Field.Common.Name),
			Name:  string(v.SingleSelect.Name),
		}, true
	case "ProjectV2ItemFieldTextValue":
		return types.FieldValue{
			Kind:  types.FieldText,
			Field: string(v.Text.Field.Common.Name),
			Text:  string(v.Text.Text),
		}, true
	case "ProjectV2ItemFieldNumberValue":
		fv := types.FieldValue{
			Kind:  types.FieldNumber,
			Field: string(v.Number.Field.Common.Name),
		}
		if v.Number.Number != nil {
			n := float64(*v.Number.Number)
			fv.Number = &n
		}
		return fv, true
	case "ProjectV2ItemFieldIterationValue":
		return types.FieldValue{
			Kind:  types.FieldIteration,
			Field: string(v.Iteration.Field.Common.Name),
			Title: string(v.Iteration.Title),
		}, true
	}
	return types.FieldValue{}, false
}

func deref(s *githubv4.String) string {
	if s == nil {
		return ""
	}
	return string(*s)
}
