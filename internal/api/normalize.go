package api

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"readyset/internal/models"
)

// Backend responses come in two historical shapes. Everything is mapped to
// the models types here and nowhere else.

func normalizeUser(raw json.RawMessage, token string) (*models.User, bool) {
	id, patch, ok := normalizeUserPatch(raw, token)
	if !ok {
		return nil, false
	}
	u := &models.User{ID: id, Role: models.RoleUser}
	patch.Apply(u)
	return u, true
}

// normalizeUserPatch reads a user payload into a patch holding only the fields
// the payload (or the token's claims) actually carries.
func normalizeUserPatch(raw json.RawMessage, token string) (string, models.UserPatch, bool) {
	o, ok := parseObject(raw)
	if !ok {
		return "", models.UserPatch{}, false
	}
	if nested, ok := o.object("user", "profile"); ok {
		o = nested
	}
	claims := tokenClaims(token)

	var p models.UserPatch
	if s := o.str("name", "username", "fullName"); s != "" {
		p.Name = &s
	}
	email := o.str("email")
	if email == "" {
		email = claimString(claims, "email")
	}
	if email != "" {
		p.Email = &email
	}
	if s := o.str("avatarUrl", "avatar", "picture"); s != "" {
		p.AvatarURL = &s
	}
	if n, ok := o.integer("score", "totalScore", "total_score"); ok {
		p.Score = &n
	}
	if n, ok := o.integer("completedQuizzes", "quizzesCompleted", "completed_quizzes"); ok {
		p.CompletedQuizzes = &n
	}
	if avg, ok := o.number("averageScore", "average_score", "avgScore"); ok {
		p.AverageScore = &avg
	}
	if role, ok := userRole(o, claims); ok {
		p.Role = &role
	}
	if items, ok := o.array("quizHistory", "quiz_history", "history"); ok {
		p.QuizHistory = make([]models.QuizAttempt, 0, len(items))
		for _, item := range items {
			if a, ok := normalizeAttempt(item); ok {
				p.QuizHistory = append(p.QuizHistory, a)
			}
		}
	}

	id := o.str("id", "_id", "userId")
	if id == "" {
		id = claimString(claims, "sub", "id", "userId")
	}
	if id == "" && email == "" {
		return "", models.UserPatch{}, false
	}
	return id, p, true
}

// userRole prefers an explicit role, then an isAdmin flag, then the token's claims.
// It reports false when none of them is present.
func userRole(o object, claims jwt.MapClaims) (models.Role, bool) {
	if r := o.str("role"); r != "" {
		return models.ParseRole(r), true
	}
	if _, ok := o.raw("isAdmin", "is_admin"); ok {
		if o.boolean("isAdmin", "is_admin") {
			return models.RoleAdmin, true
		}
		return models.RoleUser, true
	}
	if r := claimString(claims, "role"); r != "" {
		return models.ParseRole(r), true
	}
	if admin, ok := claims["isAdmin"].(bool); ok {
		if admin {
			return models.RoleAdmin, true
		}
		return models.RoleUser, true
	}
	return "", false
}

// tokenClaims decodes the backend JWT without verifying it. The backend stays
// the authority; the claims only fill fields its user payload omitted.
func tokenClaims(token string) jwt.MapClaims {
	if token == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := claims[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func normalizeAttempt(raw json.RawMessage) (models.QuizAttempt, bool) {
	o, ok := parseObject(raw)
	if !ok {
		return models.QuizAttempt{}, false
	}
	a := models.QuizAttempt{
		QuizID:    o.str("quizId", "quiz_id", "quiz"),
		QuizTitle: o.str("quizTitle", "title"),
		Score:     o.intOr(0, "score", "correct"),
		Total:     o.intOr(0, "total", "totalQuestions", "outOf"),
	}
	if t := o.time("completedAt", "date", "createdAt"); t != nil {
		a.CompletedAt = *t
	}
	return a, true
}

// normalizeAuth reads a login/register response: {token, user} in any of its spellings
func normalizeAuth(raw json.RawMessage) (string, *models.User, bool) {
	o, ok := parseObject(raw)
	if !ok {
		return "", nil, false
	}
	token := o.str("token", "accessToken", "access_token", "jwt")
	if token == "" {
		return "", nil, false
	}

	userRaw, ok := o.raw("user", "profile")
	if !ok {
		userRaw = raw
	}
	user, ok := normalizeUser(userRaw, token)
	if !ok {
		user, ok = userFromClaims(token)
	}
	return token, user, ok
}

func userFromClaims(token string) (*models.User, bool) {
	claims := tokenClaims(token)
	id := claimString(claims, "sub", "id", "userId")
	if id == "" {
		return nil, false
	}
	u := &models.User{
		ID:    id,
		Name:  claimString(claims, "name", "username"),
		Email: claimString(claims, "email"),
		Role:  models.ParseRole(claimString(claims, "role")),
	}
	if admin, ok := claims["isAdmin"].(bool); ok && admin {
		u.Role = models.RoleAdmin
	}
	return u, true
}

func normalizeKit(raw json.RawMessage) (models.Kit, bool) {
	o, ok := parseObject(raw)
	if !ok {
		return models.Kit{}, false
	}
	if nested, ok := o.object("kit"); ok {
		o = nested
	}

	k := models.Kit{
		ID:           o.str("id", "_id"),
		HouseType:    o.str("houseType", "house_type"),
		Region:       o.str("region", "location"),
		NumResidents: o.intOr(0, "numResidents", "residents", "num_residents"),
		HasChildren:  o.boolean("hasChildren", "has_children"),
		HasElderly:   o.boolean("hasElderly", "has_elderly"),
		HasPets:      o.boolean("hasPets", "has_pets"),
		IsCustom:     o.boolean("isCustom", "is_custom"),
	}

	items, _ := o.array("recommendedItems", "items", "recommended_items")
	for i, item := range items {
		if it, ok := normalizeItem(item, i); ok {
			k.RecommendedItems = append(k.RecommendedItems, it)
		}
	}
	return k, k.ID != ""
}

// normalizeItem accepts objects or bare names
func normalizeItem(raw json.RawMessage, index int) (models.Item, bool) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if name == "" {
			return models.Item{}, false
		}
		return models.Item{ID: "item-" + strconv.Itoa(index+1), Name: name}, true
	}

	o, ok := parseObject(raw)
	if !ok {
		return models.Item{}, false
	}
	it := models.Item{
		ID:             o.str("id", "_id"),
		Name:           o.str("name", "item", "title"),
		Description:    o.str("description", "desc"),
		Category:       o.str("category"),
		Unit:           o.str("unit"),
		ExpirationDate: o.time("expirationDate", "expiration_date", "expiresAt"),
	}
	if q, ok := o.integer("quantity", "qty"); ok {
		it.Quantity = &q
	}
	if it.ID == "" {
		it.ID = "item-" + strconv.Itoa(index+1)
	}
	return it, it.Name != ""
}

func normalizeKits(raw json.RawMessage) []models.Kit {
	var kits []models.Kit
	for _, item := range listOf(raw, "kits") {
		if k, ok := normalizeKit(item); ok {
			kits = append(kits, k)
		}
	}
	return kits
}

func normalizeQuiz(raw json.RawMessage) (models.Quiz, bool) {
	o, ok := parseObject(raw)
	if !ok {
		return models.Quiz{}, false
	}
	if nested, ok := o.object("quiz"); ok {
		o = nested
	}

	q := models.Quiz{
		ID:           o.str("id", "_id"),
		Title:        o.str("title", "name"),
		Description:  o.str("description"),
		DisasterType: models.ParseDisasterType(o.str("disasterType", "disaster_type", "type", "category")),
	}
	questions, _ := o.array("questions")
	for i, item := range questions {
		if question, ok := normalizeQuestion(item, i); ok {
			q.Questions = append(q.Questions, question)
		}
	}
	return q, q.ID != ""
}

func normalizeQuestion(raw json.RawMessage, index int) (models.Question, bool) {
	o, ok := parseObject(raw)
	if !ok {
		return models.Question{}, false
	}
	q := models.Question{
		ID:   o.str("id", "_id"),
		Text: o.str("text", "question", "title"),
	}
	if q.ID == "" {
		q.ID = strconv.Itoa(index)
	}

	choices, _ := o.array("choices", "options", "answers")
	for i, c := range choices {
		var text string
		if err := json.Unmarshal(c, &text); err == nil {
			q.Choices = append(q.Choices, models.Choice{ID: strconv.Itoa(i), Text: text})
			continue
		}
		co, ok := parseObject(c)
		if !ok {
			continue
		}
		choice := models.Choice{
			ID:   co.str("id", "_id"),
			Text: co.str("text", "label", "option", "value"),
		}
		if choice.ID == "" {
			choice.ID = strconv.Itoa(i)
		}
		q.Choices = append(q.Choices, choice)
	}
	return q, q.Text != ""
}

func normalizeQuizzes(raw json.RawMessage) []models.Quiz {
	var quizzes []models.Quiz
	for _, item := range listOf(raw, "quizzes") {
		if q, ok := normalizeQuiz(item); ok {
			quizzes = append(quizzes, q)
		}
	}
	return quizzes
}

func normalizeResult(raw json.RawMessage, questions int) models.QuizResult {
	o, ok := parseObject(raw)
	if !ok {
		return models.QuizResult{Total: questions}
	}
	r := models.QuizResult{
		Score: o.intOr(0, "score", "correct", "correctAnswers"),
		Total: o.intOr(questions, "total", "totalQuestions", "outOf"),
	}
	if userRaw, ok := o.raw("user"); ok {
		if _, patch, ok := normalizeUserPatch(userRaw, ""); ok {
			r.User = &patch
		}
	}
	return r
}

func normalizeContent(raw json.RawMessage) (models.Content, bool) {
	o, ok := parseObject(raw)
	if !ok {
		return models.Content{}, false
	}
	if nested, ok := o.object("content"); ok {
		o = nested
	}

	c := models.Content{
		ID:           o.str("id", "_id"),
		Title:        o.str("title", "name"),
		Description:  o.str("description", "summary", "body"),
		DisasterType: models.ParseDisasterType(o.str("disasterType", "disaster_type", "type", "category")),
		VideoURL:     o.str("videoUrl", "video_url", "video"),
		BeforeTips:   o.strings("beforeTips", "before_tips"),
		DuringTips:   o.strings("duringTips", "during_tips"),
		AfterTips:    o.strings("afterTips", "after_tips"),
	}
	if tips, ok := o.object("tips"); ok {
		if c.BeforeTips == nil {
			c.BeforeTips = tips.strings("before")
		}
		if c.DuringTips == nil {
			c.DuringTips = tips.strings("during")
		}
		if c.AfterTips == nil {
			c.AfterTips = tips.strings("after")
		}
	}
	return c, c.ID != ""
}

func normalizeContents(raw json.RawMessage) []models.Content {
	var out []models.Content
	for _, item := range listOf(raw, "content", "contents") {
		if c, ok := normalizeContent(item); ok {
			out = append(out, c)
		}
	}
	return out
}

func normalizeUsers(raw json.RawMessage) []models.User {
	var out []models.User
	for _, item := range listOf(raw, "users") {
		if u, ok := normalizeUser(item, ""); ok {
			out = append(out, *u)
		}
	}
	return out
}

func normalizeLeaderboard(raw json.RawMessage) []models.LeaderboardEntry {
	var out []models.LeaderboardEntry
	for i, item := range listOf(raw, "leaderboard", "users") {
		o, ok := parseObject(item)
		if !ok {
			continue
		}
		e := models.LeaderboardEntry{
			Rank:             o.intOr(i+1, "rank", "position"),
			UserID:           o.str("userId", "id", "_id"),
			Name:             o.str("name", "username"),
			Score:            o.intOr(0, "score", "totalScore"),
			CompletedQuizzes: o.intOr(0, "completedQuizzes", "quizzesCompleted"),
		}
		if avg, ok := o.number("averageScore", "average_score"); ok {
			e.AverageScore = avg
		}
		out = append(out, e)
	}
	return out
}

// Outgoing payloads use the current camelCase shape

type itemPayload struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Category       string `json:"category,omitempty"`
	Quantity       *int   `json:"quantity,omitempty"`
	Unit           string `json:"unit,omitempty"`
	ExpirationDate string `json:"expirationDate,omitempty"`
}

type kitPayload struct {
	HouseType        string        `json:"houseType"`
	Region           string        `json:"region"`
	NumResidents     int           `json:"numResidents"`
	HasChildren      bool          `json:"hasChildren"`
	HasElderly       bool          `json:"hasElderly"`
	HasPets          bool          `json:"hasPets"`
	IsCustom         bool          `json:"isCustom"`
	RecommendedItems []itemPayload `json:"recommendedItems"`
}

func kitToPayload(k models.Kit) kitPayload {
	p := kitPayload{
		HouseType:        k.HouseType,
		Region:           k.Region,
		NumResidents:     k.NumResidents,
		HasChildren:      k.HasChildren,
		HasElderly:       k.HasElderly,
		HasPets:          k.HasPets,
		IsCustom:         k.IsCustom,
		RecommendedItems: make([]itemPayload, 0, len(k.RecommendedItems)),
	}
	for _, it := range k.RecommendedItems {
		ip := itemPayload{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Category:    it.Category,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
		}
		if it.ExpirationDate != nil {
			ip.ExpirationDate = it.ExpirationDate.Format(time.DateOnly)
		}
		p.RecommendedItems = append(p.RecommendedItems, ip)
	}
	return p
}

type contentPayload struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	DisasterType string   `json:"disasterType"`
	VideoURL     string   `json:"videoUrl"`
	BeforeTips   []string `json:"beforeTips"`
	DuringTips   []string `json:"duringTips"`
	AfterTips    []string `json:"afterTips"`
}

func contentToPayload(c models.Content) contentPayload {
	return contentPayload{
		Title:        c.Title,
		Description:  c.Description,
		DisasterType: c.DisasterType.String(),
		VideoURL:     c.VideoURL,
		BeforeTips:   nonNil(c.BeforeTips),
		DuringTips:   nonNil(c.DuringTips),
		AfterTips:    nonNil(c.AfterTips),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
