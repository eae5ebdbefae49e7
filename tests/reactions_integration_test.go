package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// ============================================================================
// Test Configuration
// ============================================================================
//
// These tests run against a live server (TEST_BASE_URL, default :8080) with
// Postgres and Redis behind it. They register their own throwaway accounts so
// no seed data is required.

var baseURL = getEnv("TEST_BASE_URL", "http://localhost:8080")

// ============================================================================
// HTTP Client Helpers
// ============================================================================

type apiClient struct {
	client  *http.Client
	baseURL string
	token   string
}

func newClient() *apiClient {
	return &apiClient{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

func (c *apiClient) withToken(token string) *apiClient {
	c.token = token
	return c
}

func (c *apiClient) get(path string) (*http.Response, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.client.Do(req)
}

func (c *apiClient) post(path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.client.Do(req)
}

func parseJSON(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ============================================================================
// Setup Helpers
// ============================================================================

// registerAndLogin creates a fresh account and returns its access token.
func registerAndLogin(t *testing.T, tag string) string {
	t.Helper()
	client := newClient()

	email := fmt.Sprintf("%s_%d@test.local", tag, time.Now().UnixNano())
	password := "password123"

	resp, err := client.post("/auth/register", map[string]string{
		"email":        email,
		"password":     password,
		"display_name": tag,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Register failed with status %d: %s", resp.StatusCode, body)
	}
	resp.Body.Close()

	resp, err = client.post("/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Login failed with status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := parseJSON(resp, &result); err != nil {
		t.Fatalf("Parse login response: %v", err)
	}
	return result.AccessToken
}

// createVideo registers a video record and returns its id.
func createVideo(t *testing.T, client *apiClient, title string) int64 {
	t.Helper()

	resp, err := client.post("/videos", map[string]string{
		"title":     title,
		"video_url": "https://cdn.test.local/videos/" + title + ".mp4",
	})
	if err != nil {
		t.Fatalf("Create video failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Create video failed with status %d: %s", resp.StatusCode, body)
	}

	var video struct {
		ID int64 `json:"id"`
	}
	if err := parseJSON(resp, &video); err != nil {
		t.Fatalf("Parse video response: %v", err)
	}
	return video.ID
}

func toggle(t *testing.T, client *apiClient, videoID int64, action string) string {
	t.Helper()

	resp, err := client.post("/reactions/video", map[string]interface{}{
		"video_id": videoID,
		"action":   action,
	})
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Toggle failed with status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Success bool   `json:"success"`
		State   string `json:"state"`
	}
	if err := parseJSON(resp, &result); err != nil {
		t.Fatalf("Parse toggle response: %v", err)
	}
	if !result.Success {
		t.Fatal("Toggle response success=false")
	}
	return result.State
}

type videoRecord struct {
	ID           int64   `json:"id"`
	LikeCount    int     `json:"like_count"`
	DislikeCount int     `json:"dislike_count"`
	Likes        []int64 `json:"likes"`
	Dislikes     []int64 `json:"dislikes"`
}

func getVideo(t *testing.T, videoID int64) videoRecord {
	t.Helper()

	resp, err := newClient().get(fmt.Sprintf("/videos/%d", videoID))
	if err != nil {
		t.Fatalf("Get video failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Get video failed with status %d: %s", resp.StatusCode, body)
	}

	var video videoRecord
	if err := parseJSON(resp, &video); err != nil {
		t.Fatalf("Parse video: %v", err)
	}
	return video
}

// ============================================================================
// TEST CASES
// ============================================================================

// TestReactionToggleLifecycle walks one user through like, switch to dislike,
// and dislike-again on the same video, checking counts and membership after
// each step.
func TestReactionToggleLifecycle(t *testing.T) {
	token := registerAndLogin(t, "toggler")
	client := newClient().withToken(token)
	videoID := createVideo(t, client, "toggle-lifecycle")

	// Step 1: like
	if state := toggle(t, client, videoID, "like"); state != "liked" {
		t.Errorf("after like: state = %q, want liked", state)
	}
	video := getVideo(t, videoID)
	if video.LikeCount != 1 || video.DislikeCount != 0 {
		t.Errorf("after like: counts = %d/%d, want 1/0", video.LikeCount, video.DislikeCount)
	}

	// Step 2: switch to dislike
	if state := toggle(t, client, videoID, "dislike"); state != "disliked" {
		t.Errorf("after switch: state = %q, want disliked", state)
	}
	video = getVideo(t, videoID)
	if video.LikeCount != 0 || video.DislikeCount != 1 {
		t.Errorf("after switch: counts = %d/%d, want 0/1", video.LikeCount, video.DislikeCount)
	}
	if len(video.Likes) != 0 || len(video.Dislikes) != 1 {
		t.Errorf("after switch: membership likes=%v dislikes=%v", video.Likes, video.Dislikes)
	}

	// Step 3: dislike again removes it
	if state := toggle(t, client, videoID, "dislike"); state != "none" {
		t.Errorf("after repeat dislike: state = %q, want none", state)
	}
	video = getVideo(t, videoID)
	if video.LikeCount != 0 || video.DislikeCount != 0 {
		t.Errorf("after removal: counts = %d/%d, want 0/0", video.LikeCount, video.DislikeCount)
	}

	t.Log("✓ Reaction toggle lifecycle test passed")
}

// TestReactionNeverBoth hammers one pair with alternating actions and checks
// the user never appears in both membership lists.
func TestReactionNeverBoth(t *testing.T) {
	token := registerAndLogin(t, "alternator")
	client := newClient().withToken(token)
	videoID := createVideo(t, client, "never-both")

	actions := []string{"like", "dislike", "like", "like", "dislike", "dislike"}
	for _, action := range actions {
		toggle(t, client, videoID, action)

		video := getVideo(t, videoID)
		for _, likeID := range video.Likes {
			for _, dislikeID := range video.Dislikes {
				if likeID == dislikeID {
					t.Fatalf("user %d in both likes and dislikes", likeID)
				}
			}
		}
		if video.LikeCount != len(video.Likes) || video.DislikeCount != len(video.Dislikes) {
			t.Errorf("counts %d/%d disagree with membership %d/%d",
				video.LikeCount, video.DislikeCount, len(video.Likes), len(video.Dislikes))
		}
	}

	t.Log("✓ Never-both invariant test passed")
}

// TestMyReactionsMirror verifies GET /me/reactions tracks toggles, allowing
// for the asynchronous mirror update.
func TestMyReactionsMirror(t *testing.T) {
	token := registerAndLogin(t, "mirrored")
	client := newClient().withToken(token)

	videoA := createVideo(t, client, "mirror-a")
	videoB := createVideo(t, client, "mirror-b")

	toggle(t, client, videoA, "like")
	toggle(t, client, videoB, "dislike")

	// Wait for async workers to apply the events
	time.Sleep(500 * time.Millisecond)

	resp, err := client.get("/me/reactions?kind=videos")
	if err != nil {
		t.Fatalf("Get reactions failed: %v", err)
	}
	var reactions struct {
		Liked    []int64 `json:"liked"`
		Disliked []int64 `json:"disliked"`
	}
	if err := parseJSON(resp, &reactions); err != nil {
		t.Fatalf("Parse reactions: %v", err)
	}

	if len(reactions.Liked) != 1 || reactions.Liked[0] != videoA {
		t.Errorf("liked = %v, want [%d]", reactions.Liked, videoA)
	}
	if len(reactions.Disliked) != 1 || reactions.Disliked[0] != videoB {
		t.Errorf("disliked = %v, want [%d]", reactions.Disliked, videoB)
	}

	t.Log("✓ My reactions mirror test passed")
}

// TestCommentTreeNesting posts a root comment, a reply, and a reply-to-reply,
// then checks the read side returns them nested with insertion order.
func TestCommentTreeNesting(t *testing.T) {
	token := registerAndLogin(t, "commenter")
	client := newClient().withToken(token)
	videoID := createVideo(t, client, "comment-tree")

	postComment := func(content string, parentID *int64) int64 {
		body := map[string]interface{}{
			"video_id": videoID,
			"content":  content,
		}
		if parentID != nil {
			body["parent_id"] = *parentID
		}
		resp, err := client.post("/comments", body)
		if err != nil {
			t.Fatalf("Post comment failed: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			t.Fatalf("Post comment failed with status %d: %s", resp.StatusCode, b)
		}
		var comment struct {
			ID int64 `json:"id"`
		}
		if err := parseJSON(resp, &comment); err != nil {
			t.Fatalf("Parse comment: %v", err)
		}
		return comment.ID
	}

	root1 := postComment("first!", nil)
	root2 := postComment("second", nil)
	reply := postComment("replying to first", &root1)
	postComment("replying to the reply", &reply)

	resp, err := newClient().get(fmt.Sprintf("/comments?videoId=%d", videoID))
	if err != nil {
		t.Fatalf("Get comments failed: %v", err)
	}
	var tree struct {
		Comments []struct {
			ID      int64 `json:"id"`
			Replies []struct {
				ID      int64 `json:"id"`
				Replies []struct {
					ID int64 `json:"id"`
				} `json:"replies"`
			} `json:"replies"`
		} `json:"comments"`
	}
	if err := parseJSON(resp, &tree); err != nil {
		t.Fatalf("Parse comment tree: %v", err)
	}

	if len(tree.Comments) != 2 {
		t.Fatalf("got %d roots, want 2", len(tree.Comments))
	}
	if tree.Comments[0].ID != root1 || tree.Comments[1].ID != root2 {
		t.Errorf("roots = [%d, %d], want [%d, %d] (insertion order)",
			tree.Comments[0].ID, tree.Comments[1].ID, root1, root2)
	}
	if len(tree.Comments[0].Replies) != 1 || tree.Comments[0].Replies[0].ID != reply {
		t.Fatalf("first root should carry the reply nested under it")
	}
	if len(tree.Comments[0].Replies[0].Replies) != 1 {
		t.Errorf("reply-to-reply should be expanded at depth 2")
	}

	t.Log("✓ Comment tree nesting test passed")
}

// TestCommentValidation checks rejected comments leave no record behind.
func TestCommentValidation(t *testing.T) {
	token := registerAndLogin(t, "validator")
	client := newClient().withToken(token)
	videoID := createVideo(t, client, "comment-validation")

	// Whitespace-only content is rejected
	resp, err := client.post("/comments", map[string]interface{}{
		"video_id": videoID,
		"content":  "   \n  ",
	})
	if err != nil {
		t.Fatalf("Post comment failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("whitespace comment: status = %d, want 400", resp.StatusCode)
	}

	// Parent on a different video is rejected
	otherVideoID := createVideo(t, client, "comment-validation-other")
	parentResp, err := client.post("/comments", map[string]interface{}{
		"video_id": otherVideoID,
		"content":  "on the other video",
	})
	if err != nil {
		t.Fatalf("Post parent comment failed: %v", err)
	}
	var parent struct {
		ID int64 `json:"id"`
	}
	if err := parseJSON(parentResp, &parent); err != nil {
		t.Fatalf("Parse parent comment: %v", err)
	}

	resp, err = client.post("/comments", map[string]interface{}{
		"video_id":  videoID,
		"content":   "cross-video reply",
		"parent_id": parent.ID,
	})
	if err != nil {
		t.Fatalf("Post cross-video reply failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("cross-video reply: status = %d, want 400", resp.StatusCode)
	}

	// The video still has no comments
	resp, err = newClient().get(fmt.Sprintf("/comments?videoId=%d", videoID))
	if err != nil {
		t.Fatalf("Get comments failed: %v", err)
	}
	var tree struct {
		Comments []interface{} `json:"comments"`
	}
	if err := parseJSON(resp, &tree); err != nil {
		t.Fatalf("Parse comments: %v", err)
	}
	if len(tree.Comments) != 0 {
		t.Errorf("rejected comments left %d records", len(tree.Comments))
	}

	t.Log("✓ Comment validation test passed")
}

// TestToggleRequiresAuth verifies anonymous toggles are rejected.
func TestToggleRequiresAuth(t *testing.T) {
	resp, err := newClient().post("/reactions/video", map[string]interface{}{
		"video_id": 1,
		"action":   "like",
	})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
