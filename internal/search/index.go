package search

import (
	"bytes"
	"context"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
)

const (
	IdxUsers      = "users_v1"
	IdxHackathons = "hackathons_v1"
	IdxTeams      = "teams_v1"
)

func EnsureIndexes(ctx context.Context, c *es.Client) error {
	mapping := `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"username":{"type":"keyword"},"email":{"type":"keyword"},"skills":{"type":"keyword"},
		"college":{"type":"text"},"current_hackathon_id":{"type":"keyword"},"updated_at":{"type":"date"}
	}}}`
	if err := ensure(ctx, c, IdxUsers, mapping); err != nil {
		return err
	}

	mapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"title":{"type":"text"},"location":{"type":"keyword"},"tracks":{"type":"keyword"},
		"status":{"type":"keyword"},"teams_formed":{"type":"boolean"},
		"registration_deadline":{"type":"date"},"start_at":{"type":"date"},"end_at":{"type":"date"},
		"updated_at":{"type":"date"}
	}}}`
	if err := ensure(ctx, c, IdxHackathons, mapping); err != nil {
		return err
	}

	mapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"name":{"type":"keyword"},"hackathon_id":{"type":"keyword"},
		"problem_statement":{"type":"text"},"team_size":{"type":"integer"},
		"submission_status":{"type":"keyword"},"member_ids":{"type":"keyword"},
		"updated_at":{"type":"date"}
	}}}`
	return ensure(ctx, c, IdxTeams, mapping)
}

func ensure(ctx context.Context, c *es.Client, index, body string) error {
	exists, _ := c.Indices.Exists([]string{index})
	if exists.StatusCode == 200 {
		return nil
	}
	_, err := c.Indices.Create(index, c.Indices.Create.WithBody(bytes.NewBufferString(body)), c.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	return nil
}
