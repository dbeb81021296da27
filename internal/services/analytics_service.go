package services

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/thereayou/lecture-live/internal/database"
	"github.com/thereayou/lecture-live/internal/errs"
	"github.com/thereayou/lecture-live/internal/models"
	"github.com/thereayou/lecture-live/internal/policy"
	"go.uber.org/zap"
)

const (
	// Формат минутной корзины таймлайна
	timelineBucketFormat = "2006-01-02 15:04"

	topContributorsLimit = 10
	recentActivityWindow = 5 * time.Minute
	analyticsCacheTTL    = 10 * time.Second
)

// AnalyticsService — снимки статистики поверх лога сообщений и членств.
// Только чтение; при частых запросах результат кэшируется в Redis.
type AnalyticsService struct {
	db  *database.Database
	rdb *redis.Client
	log *zap.Logger
}

func NewAnalyticsService(db *database.Database, rdb *redis.Client, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{db: db, rdb: rdb, log: log}
}

type Summary struct {
	TotalMessages     int64   `json:"totalMessages"`
	ActiveUsers       int64   `json:"activeUsers"`
	TotalMembers      int64   `json:"totalMembers"`
	ParticipationRate float64 `json:"participationRate"`
}

type TimelinePoint struct {
	Time  string `json:"time"`
	Count int64  `json:"count"`
}

type TypeTimelinePoint struct {
	Time  string `json:"time"`
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type Contributor struct {
	UserID       uuid.UUID `json:"userId"`
	DisplayName  string    `json:"displayName"`
	Email        string    `json:"email"`
	MessageCount int64     `json:"messageCount"`
}

type LecturerAnalytics struct {
	Summary         Summary             `json:"summary"`
	MessagesByType  map[string]int64    `json:"messagesByType"`
	Timeline        []TimelinePoint     `json:"timeline"`
	TypeTimeline    []TypeTimelinePoint `json:"typeTimeline"`
	TopContributors []Contributor       `json:"topContributors"`
}

type StudentAnalytics struct {
	Personal struct {
		MessageCount   int64            `json:"messageCount"`
		MessagesByType map[string]int64 `json:"messagesByType"`
		Rank           *int             `json:"rank"`
		Percentile     *float64         `json:"percentile"`
	} `json:"personal"`
	Class struct {
		Average       float64 `json:"average"`
		TotalMessages int64   `json:"totalMessages"`
		TotalMembers  int64   `json:"totalMembers"`
		ActiveMembers int64   `json:"activeMembers"`
	} `json:"class"`
	Comparison struct {
		AboveAverage bool    `json:"aboveAverage"`
		Difference   float64 `json:"difference"`
	} `json:"comparison"`
}

type LiveStats struct {
	TotalMessages int64  `json:"totalMessages"`
	TotalMembers  int64  `json:"totalMembers"`
	ActiveUsers   int64  `json:"activeUsers"`
	SessionStatus string `json:"sessionStatus"`
}

// Lecturer собирает сводку по сессии для её владельца
func (s *AnalyticsService) Lecturer(p policy.Principal, sessionID uuid.UUID) (*LecturerAnalytics, error) {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NotFound("session not found")
		}
		return nil, errs.Internal("failed to fetch analytics")
	}
	if session.LecturerID != p.UserID {
		return nil, errs.Forbidden("access denied")
	}

	cacheKey := "analytics:lecturer:" + sessionID.String()
	var cached LecturerAnalytics
	if s.cacheGet(cacheKey, &cached) {
		return &cached, nil
	}

	out := &LecturerAnalytics{}

	totalMessages, err := s.db.CountSessionMessages(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch analytics")
	}
	byType, err := s.db.CountMessagesByType(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch analytics")
	}
	activeUsers, err := s.db.CountDistinctAuthors(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch analytics")
	}
	totalMembers, err := s.db.CountMembers(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch analytics")
	}

	out.Summary = Summary{
		TotalMessages:     totalMessages,
		ActiveUsers:       activeUsers,
		TotalMembers:      totalMembers,
		ParticipationRate: participationRate(activeUsers, totalMembers),
	}
	out.MessagesByType = withTypeDefaults(byType)

	timeline, err := s.db.MessageTimeline(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch analytics")
	}
	out.Timeline, out.TypeTimeline = bucketTimeline(timeline)

	contributors, err := s.topContributors(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch analytics")
	}
	out.TopContributors = contributors

	s.cacheSet(cacheKey, out)
	return out, nil
}

// Student собирает персональную статистику участника
func (s *AnalyticsService) Student(p policy.Principal, sessionID uuid.UUID) (*StudentAnalytics, error) {
	isMember, err := s.db.IsMember(p.UserID, sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch analytics")
	}
	if !isMember {
		return nil, errs.Forbidden("you are not a member of this session")
	}

	cacheKey := "analytics:student:" + sessionID.String() + ":" + p.UserID.String()
	var cached StudentAnalytics
	if s.cacheGet(cacheKey, &cached) {
		return &cached, nil
	}

	out := &StudentAnalytics{}

	myCount, err := s.db.CountUserMessages(sessionID, p.UserID)
	if err != nil {
		return nil, errs.Internal("failed to fetch analytics")
	}
	myByType, err := s.db.CountUserMessagesByType(sessionID, p.UserID)
	if err != nil {
		return nil, errs.Internal("failed to fetch analytics")
	}
	totalMembers, err := s.db.CountMembers(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch analytics")
	}
	totalMessages, err := s.db.CountSessionMessages(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch analytics")
	}
	authors, err := s.db.AuthorMessageCounts(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch analytics")
	}

	average := float64(0)
	if totalMembers > 0 {
		average = round1(float64(totalMessages) / float64(totalMembers))
	}

	out.Personal.MessageCount = myCount
	out.Personal.MessagesByType = withTypeDefaults(myByType)
	out.Personal.Rank, out.Personal.Percentile = rankAmong(authors, p.UserID)

	out.Class.Average = average
	out.Class.TotalMessages = totalMessages
	out.Class.TotalMembers = totalMembers
	out.Class.ActiveMembers = int64(len(authors))

	out.Comparison.AboveAverage = float64(myCount) > average
	out.Comparison.Difference = round1(float64(myCount) - average)

	s.cacheSet(cacheKey, out)
	return out, nil
}

// Live — дешёвый снимок для обеих ролей: активность считается по авторам
// за последние 5 минут, без связи с live-присутствием в комнате
func (s *AnalyticsService) Live(p policy.Principal, sessionID uuid.UUID) (*LiveStats, error) {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NotFound("session not found")
		}
		return nil, errs.Internal("failed to fetch live stats")
	}

	isMember, err := s.db.IsMember(p.UserID, sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch live stats")
	}
	if !isMember && session.LecturerID != p.UserID {
		return nil, errs.Forbidden("you are not a member of this session")
	}

	cacheKey := "analytics:live:" + sessionID.String()
	var cached LiveStats
	if s.cacheGet(cacheKey, &cached) {
		return &cached, nil
	}

	totalMessages, err := s.db.CountSessionMessages(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch live stats")
	}
	totalMembers, err := s.db.CountMembers(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch live stats")
	}
	recentAuthors, err := s.db.CountRecentDistinctAuthors(sessionID, time.Now().Add(-recentActivityWindow))
	if err != nil {
		return nil, errs.Internal("failed to fetch live stats")
	}

	out := &LiveStats{
		TotalMessages: totalMessages,
		TotalMembers:  totalMembers,
		ActiveUsers:   recentAuthors,
		SessionStatus: session.Status,
	}
	s.cacheSet(cacheKey, out)
	return out, nil
}

func (s *AnalyticsService) topContributors(sessionID uuid.UUID) ([]Contributor, error) {
	authors, err := s.db.AuthorMessageCounts(sessionID)
	if err != nil {
		return nil, err
	}
	if len(authors) > topContributorsLimit {
		authors = authors[:topContributorsLimit]
	}

	ids := make([]uuid.UUID, len(authors))
	for i, a := range authors {
		ids[i] = a.AuthorID
	}
	users, err := s.db.GetUsersByIDs(ids)
	if err != nil {
		return nil, err
	}

	contributors := make([]Contributor, len(authors))
	for i, a := range authors {
		c := Contributor{UserID: a.AuthorID, DisplayName: "Unknown", MessageCount: a.Count}
		if u, ok := users[a.AuthorID]; ok {
			c.DisplayName = u.DisplayName
			c.Email = u.Email
		}
		contributors[i] = c
	}
	return contributors, nil
}

func (s *AnalyticsService) cacheGet(key string, dst interface{}) bool {
	if s.rdb == nil {
		return false
	}
	raw, err := s.rdb.Get(context.Background(), key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (s *AnalyticsService) cacheSet(key string, v interface{}) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(context.Background(), key, raw, analyticsCacheTTL).Err(); err != nil {
		s.log.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// participationRate = activeUsers/totalMembers * 100, один знак после запятой
func participationRate(activeUsers, totalMembers int64) float64 {
	if totalMembers == 0 {
		return 0
	}
	return round1(float64(activeUsers) / float64(totalMembers) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func withTypeDefaults(counts map[string]int64) map[string]int64 {
	out := map[string]int64{
		models.TypeQuestion:  0,
		models.TypeComment:   0,
		models.TypeConfusion: 0,
	}
	for t, n := range counts {
		out[t] = n
	}
	return out
}

// bucketTimeline раскладывает сообщения по минутным корзинам,
// общий таймлайн и таймлайн по типам за один проход
func bucketTimeline(rows []database.TimedType) ([]TimelinePoint, []TypeTimelinePoint) {
	total := make(map[string]int64)
	byType := make(map[string]map[string]int64)
	for _, r := range rows {
		bucket := r.CreatedAt.Format(timelineBucketFormat)
		total[bucket]++
		if byType[bucket] == nil {
			byType[bucket] = make(map[string]int64)
		}
		byType[bucket][r.Type]++
	}

	buckets := make([]string, 0, len(total))
	for b := range total {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)

	timeline := make([]TimelinePoint, 0, len(buckets))
	typeTimeline := make([]TypeTimelinePoint, 0, len(buckets))
	for _, b := range buckets {
		timeline = append(timeline, TimelinePoint{Time: b, Count: total[b]})

		types := make([]string, 0, len(byType[b]))
		for t := range byType[b] {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			typeTimeline = append(typeTimeline, TypeTimelinePoint{Time: b, Type: t, Count: byType[b][t]})
		}
	}
	return timeline, typeTimeline
}

// rankAmong: ранг = 1 + число авторов со строго большим счетом.
// Кто не написал ни одного сообщения, в ранжировании отсутствует (rank = null).
func rankAmong(authors []database.AuthorCount, userID uuid.UUID) (*int, *float64) {
	var mine *database.AuthorCount
	for i := range authors {
		if authors[i].AuthorID == userID {
			mine = &authors[i]
			break
		}
	}
	if mine == nil {
		return nil, nil
	}

	greater := 0
	for _, a := range authors {
		if a.Count > mine.Count {
			greater++
		}
	}
	rank := greater + 1
	percentile := round1((1 - float64(rank-1)/float64(len(authors))) * 100)
	return &rank, &percentile
}
