package handlers

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type fakeUserStore struct {
	users   map[string]models.User
	history []models.WatchEntry
	watched map[string]struct{}
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User), watched: make(map[string]struct{})}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByUsernameOrEmail(_ context.Context, identifier string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == identifier || user.Email == identifier {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, user := range s.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) UpdateRefreshToken(_ context.Context, id, token string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = token
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.PasswordHash = passwordHash
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, id, url string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.AvatarURL = url
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) UpdateCover(_ context.Context, id, url string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.CoverURL = url
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) ChannelProfile(_ context.Context, username, _ string) (models.ChannelProfile, error) {
	for _, user := range s.users {
		if user.Username == username {
			return models.ChannelProfile{
				ID:       user.ID,
				Username: user.Username,
				FullName: user.FullName,
				Email:    user.Email,
			}, nil
		}
	}
	return models.ChannelProfile{}, repositories.ErrNotFound
}

func (s *fakeUserStore) WatchHistory(_ context.Context, _ string) ([]models.WatchEntry, error) {
	return s.history, nil
}

func (s *fakeUserStore) AddWatchHistory(_ context.Context, userID, videoID string) error {
	key := userID + "/" + videoID
	if _, ok := s.watched[key]; ok {
		return nil
	}
	s.watched[key] = struct{}{}
	s.history = append(s.history, models.WatchEntry{Video: models.Video{ID: videoID}, WatchedAt: time.Now()})
	return nil
}

type fakeVideoStore struct {
	videos map[string]models.Video
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[string]models.Video)}
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) Detail(_ context.Context, videoID, _ string) (models.VideoDetail, error) {
	video, ok := s.videos[videoID]
	if !ok {
		return models.VideoDetail{}, repositories.ErrNotFound
	}
	return models.VideoDetail{
		ID:       video.ID,
		VideoURL: video.VideoURL,
		Title:    video.Title,
		Views:    video.Views,
	}, nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, id string) error {
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return nil
}

func (s *fakeVideoStore) Update(_ context.Context, video models.Video) error {
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *fakeVideoStore) ListByOwner(_ context.Context, ownerID string, _, _ int) ([]models.Video, error) {
	var videos []models.Video
	for _, video := range s.videos {
		if video.OwnerID == ownerID {
			videos = append(videos, video)
		}
	}
	return videos, nil
}

type fakeLikeStore struct {
	likes map[string]struct{}
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[string]struct{})}
}

func (s *fakeLikeStore) toggle(kind, targetID, userID string) (bool, error) {
	key := kind + "/" + targetID + "/" + userID
	if _, ok := s.likes[key]; ok {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = struct{}{}
	return true, nil
}

func (s *fakeLikeStore) ToggleVideo(_ context.Context, videoID, userID string) (bool, error) {
	return s.toggle("video", videoID, userID)
}

func (s *fakeLikeStore) ToggleComment(_ context.Context, commentID, userID string) (bool, error) {
	return s.toggle("comment", commentID, userID)
}

func (s *fakeLikeStore) ToggleTweet(_ context.Context, tweetID, userID string) (bool, error) {
	return s.toggle("tweet", tweetID, userID)
}

func (s *fakeLikeStore) LikedVideos(_ context.Context, _ string) ([]models.LikedVideo, error) {
	return nil, nil
}

type fakePlaylistStore struct {
	playlists map[string]models.Playlist
	members   map[string]struct{}
}

func newFakePlaylistStore() *fakePlaylistStore {
	return &fakePlaylistStore{playlists: make(map[string]models.Playlist), members: make(map[string]struct{})}
}

func (s *fakePlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *fakePlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *fakePlaylistStore) Update(_ context.Context, id, name, description string) error {
	playlist, ok := s.playlists[id]
	if !ok {
		return repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return nil
}

func (s *fakePlaylistStore) Delete(_ context.Context, id string) error {
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (s *fakePlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	key := playlistID + "/" + videoID
	if _, ok := s.members[key]; ok {
		return repositories.ErrConflict
	}
	s.members[key] = struct{}{}
	return nil
}

func (s *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	key := playlistID + "/" + videoID
	if _, ok := s.members[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.members, key)
	return nil
}

func (s *fakePlaylistStore) ListForUser(_ context.Context, _ string) ([]models.PlaylistSummary, error) {
	return nil, nil
}

type fakeCommentStore struct {
	comments map[string]models.Comment
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[string]models.Comment)}
}

func (s *fakeCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *fakeCommentStore) Update(_ context.Context, id, content string) error {
	comment, ok := s.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[id] = comment
	return nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *fakeCommentStore) ListForVideo(_ context.Context, _ string, _, _ int) ([]models.CommentView, error) {
	return nil, nil
}

type fakeTweetStore struct {
	tweets map[string]models.Tweet
}

func newFakeTweetStore() *fakeTweetStore {
	return &fakeTweetStore{tweets: make(map[string]models.Tweet)}
}

func (s *fakeTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *fakeTweetStore) Update(_ context.Context, id, content string) error {
	tweet, ok := s.tweets[id]
	if !ok {
		return repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return nil
}

func (s *fakeTweetStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

func (s *fakeTweetStore) Feed(_ context.Context, _ int) ([]models.TweetView, error) {
	return nil, nil
}

func (s *fakeTweetStore) ListByOwner(_ context.Context, _ string) ([]models.TweetView, error) {
	return nil, nil
}

type fakeSubscriptionStore struct {
	subs map[string]struct{}
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: make(map[string]struct{})}
}

func (s *fakeSubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	key := subscriberID + "/" + channelID
	if _, ok := s.subs[key]; ok {
		delete(s.subs, key)
		return false, nil
	}
	s.subs[key] = struct{}{}
	return true, nil
}

type fakeMedia struct {
	imageCalls int
	videoCalls int
}

func (m *fakeMedia) UploadImage(_ context.Context, _ string) (string, error) {
	m.imageCalls++
	return fmt.Sprintf("https://cdn.example.com/images/%d.png", m.imageCalls), nil
}

func (m *fakeMedia) UploadVideo(_ context.Context, _ string) (media.Asset, error) {
	m.videoCalls++
	return media.Asset{URL: fmt.Sprintf("https://cdn.example.com/videos/%d.mp4", m.videoCalls), Duration: 42.5}, nil
}

// multipartBody builds a multipart request body from text fields and
// single-byte file attachments.
func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file %s: %v", field, err)
		}
		if _, err := part.Write([]byte("fixture-bytes")); err != nil {
			t.Fatalf("write form file %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

// callerRequest attaches an authenticated identity to the request context,
// standing in for the auth gate.
func callerRequest(r *http.Request, id, username string) *http.Request {
	return r.WithContext(auth.WithCaller(r.Context(), auth.Identity{ID: id, Username: username}))
}
