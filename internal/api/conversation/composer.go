package conversation

import (
	"fmt"
	"strings"

	"github.com/athipan1/Database-painaidee/internal/api/nlu"
	"github.com/athipan1/Database-painaidee/internal/types"
)

const (
	LangThai    = "th"
	LangEnglish = "en"
)

type bucket int

const (
	bucketNone bucket = iota
	bucketOne
	bucketMany
)

func bucketOf(n int) bucket {
	switch {
	case n <= 0:
		return bucketNone
	case n == 1:
		return bucketOne
	default:
		return bucketMany
	}
}

// templateKey selects a reply template. A zero intent matches every intent.
type templateKey struct {
	lang   string
	intent types.Intent
	bucket bucket
}

// Placeholders: {n} result count, {place} province, {activity} activity.
var templates = map[templateKey]string{
	{LangThai, types.IntentGreeting, bucketNone}: "สวัสดีครับ! ผมสามารถช่วยแนะนำสถานที่ท่องเที่ยวได้ครับ คุณต้องการหาสถานที่ท่องเที่ยวแบบไหนบ้างครับ?",
	{LangThai, types.IntentUnknown, bucketNone}:  "ขออภัยครับ ผมยังไม่เข้าใจคำถามนี้ ลองถามเกี่ยวกับสถานที่ท่องเที่ยว เช่น \"หาที่เที่ยวในเชียงใหม่\" หรือ \"มีวัดสวยๆ ไหม\" ดูครับ",
	{LangThai, "", bucketNone}:                   "ขออภัยครับ ไม่พบสถานที่ท่องเที่ยวที่ตรงกับที่คุณต้องการ ลองใช้คำค้นหาอื่นดูครับ หรือจะให้ผมแนะนำสถานที่ยอดนิยมไหมครับ?",

	{LangThai, types.IntentSearchByLocation, bucketOne}:    "พบสถานที่ท่องเที่ยวใน{place} 1 แห่งที่น่าจะตรงกับที่คุณต้องการครับ:",
	{LangThai, types.IntentSearchByLocation, bucketMany}:   "พบสถานที่ท่องเที่ยวใน{place} จำนวน {n} แห่งครับ:",
	{LangThai, types.IntentSearchByActivity, bucketOne}:    "พบ{activity}ที่น่าสนใจ 1 แห่งครับ:",
	{LangThai, types.IntentSearchByActivity, bucketMany}:   "พบ{activity}ที่น่าสนใจ {n} แห่งครับ ลองดูดังนี้:",
	{LangThai, types.IntentSearchAttractions, bucketOne}:   "พบสถานที่ท่องเที่ยวที่เหมาะสม 1 แห่งครับ:",
	{LangThai, types.IntentSearchAttractions, bucketMany}:  "พบสถานที่ท่องเที่ยวที่เหมาะสม {n} แห่งครับ ลองดูดังนี้:",
	{LangThai, types.IntentGetRecommendations, bucketOne}:  "แนะนำสถานที่ท่องเที่ยวน่าสนใจ 1 แห่งครับ:",
	{LangThai, types.IntentGetRecommendations, bucketMany}: "แนะนำสถานที่ท่องเที่ยวน่าสนใจ {n} แห่งครับ:",
	{LangThai, "", bucketOne}:                              "พบข้อมูลที่เกี่ยวข้อง 1 รายการครับ:",
	{LangThai, "", bucketMany}:                             "พบข้อมูลที่เกี่ยวข้อง {n} รายการครับ:",

	{LangEnglish, types.IntentGreeting, bucketNone}: "Hello! I can help you find places to visit in Thailand. What kind of place are you looking for?",
	{LangEnglish, types.IntentUnknown, bucketNone}:  "Sorry, I didn't quite understand that. Try asking about attractions, for example \"places to visit in Chiang Mai\" or \"any nice temples?\".",
	{LangEnglish, "", bucketNone}:                   "Sorry, I couldn't find any attractions matching your request. Try different keywords, or ask me for popular recommendations.",

	{LangEnglish, types.IntentSearchByLocation, bucketOne}:    "I found 1 attraction in {place}:",
	{LangEnglish, types.IntentSearchByLocation, bucketMany}:   "I found {n} attractions in {place}:",
	{LangEnglish, types.IntentSearchByActivity, bucketOne}:    "I found 1 {activity} spot you might like:",
	{LangEnglish, types.IntentSearchByActivity, bucketMany}:   "I found {n} {activity} spots you might like:",
	{LangEnglish, types.IntentSearchAttractions, bucketOne}:   "I found 1 attraction that fits:",
	{LangEnglish, types.IntentSearchAttractions, bucketMany}:  "I found {n} attractions that fit, take a look:",
	{LangEnglish, types.IntentGetRecommendations, bucketOne}:  "Here is 1 attraction I recommend:",
	{LangEnglish, types.IntentGetRecommendations, bucketMany}: "Here are {n} attractions I recommend:",
	{LangEnglish, "", bucketOne}:                              "I found 1 related result:",
	{LangEnglish, "", bucketMany}:                             "I found {n} related results:",
}

var storeFailure = map[string]string{
	LangThai:    "ขออภัยครับ ระบบค้นหาสถานที่ท่องเที่ยวขัดข้องชั่วคราว กรุณาลองใหม่อีกครั้งในภายหลังครับ",
	LangEnglish: "Sorry, the attraction search is temporarily unavailable. Please try again later.",
}

// Composer renders the reply text for a turn from fixed templates.
type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// Language resolves the reply language from preferences, defaulting to Thai.
func Language(prefs types.Preferences) string {
	if prefs.Language != nil && strings.EqualFold(*prefs.Language, LangEnglish) {
		return LangEnglish
	}
	return LangThai
}

// Compose renders the reply for a turn that returned count results.
func (c *Composer) Compose(res types.IntentResult, q types.QueryDescriptor, count int, lang string) string {
	if lang != LangEnglish {
		lang = LangThai
	}
	intent := res.Intent
	b := bucketOf(count)
	if !intent.NeedsQuery() {
		b = bucketNone
	}

	// location and activity templates name what was searched; without it they fall back
	if intent == types.IntentSearchByLocation && q.Filters.Province == "" {
		intent = types.IntentSearchAttractions
	}
	activity := firstActivity(res, q)
	if intent == types.IntentSearchByActivity && activity == "" {
		intent = types.IntentSearchAttractions
	}

	tmpl, ok := templates[templateKey{lang, intent, b}]
	if !ok {
		tmpl = templates[templateKey{lang, "", b}]
	}

	place := q.Filters.Province
	if lang == LangThai {
		place = nlu.ThaiProvinceName(place)
		activity = nlu.ThaiActivityName(activity)
	}
	return strings.NewReplacer(
		"{n}", fmt.Sprint(count),
		"{place}", place,
		"{activity}", activity,
	).Replace(tmpl)
}

// ComposeStoreFailure renders the apology used when the record store could not be reached.
func (c *Composer) ComposeStoreFailure(lang string) string {
	if msg, ok := storeFailure[lang]; ok {
		return msg
	}
	return storeFailure[LangThai]
}

func firstActivity(res types.IntentResult, q types.QueryDescriptor) string {
	if len(res.Entities.Activities) > 0 {
		return res.Entities.Activities[0]
	}
	for _, t := range q.SearchTerms {
		if tag, ok := nlu.CanonicalActivity(t); ok {
			return tag
		}
	}
	return ""
}
