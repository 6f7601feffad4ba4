package nlu

import "strings"

// province pairs a canonical English province name with its Thai display name
// and every surface form that resolves to it.
type province struct {
	Canonical string
	Thai      string
	Aliases   []string
}

var provinces = []province{
	{"Bangkok", "กรุงเทพฯ", []string{"กรุงเทพมหานคร", "กรุงเทพฯ", "กรุงเทพ", "กทม", "bangkok", "bkk"}},
	{"Chiang Mai", "เชียงใหม่", []string{"เชียงใหม่", "chiang mai", "chiangmai"}},
	{"Chiang Rai", "เชียงราย", []string{"เชียงราย", "chiang rai", "chiangrai"}},
	{"Phuket", "ภูเก็ต", []string{"ภูเก็ต", "phuket"}},
	{"Khon Kaen", "ขอนแก่น", []string{"ขอนแก่น", "khon kaen"}},
	{"Nakhon Ratchasima", "นครราชสีมา", []string{"นครราชสีมา", "โคราช", "nakhon ratchasima", "korat"}},
	{"Ayutthaya", "อยุธยา", []string{"พระนครศรีอยุธยา", "อยุธยา", "ayutthaya"}},
	{"Sukhothai", "สุโขทัย", []string{"สุโขทัย", "sukhothai"}},
	{"Kanchanaburi", "กาญจนบุรี", []string{"กาญจนบุรี", "kanchanaburi"}},
	{"Krabi", "กระบี่", []string{"กระบี่", "krabi"}},
	{"Phang Nga", "พังงา", []string{"พังงา", "phang nga", "phangnga"}},
	{"Chon Buri", "ชลบุรี", []string{"ชลบุรี", "พัทยา", "chon buri", "chonburi", "pattaya"}},
	{"Surat Thani", "สุราษฎร์ธานี", []string{"สุราษฎร์ธานี", "เกาะสมุย", "เกาะพะงัน", "surat thani", "koh samui", "samui", "koh phangan"}},
	{"Prachuap Khiri Khan", "ประจวบคีรีขันธ์", []string{"ประจวบคีรีขันธ์", "หัวหิน", "prachuap khiri khan", "hua hin"}},
	{"Mae Hong Son", "แม่ฮ่องสอน", []string{"แม่ฮ่องสอน", "ปาย", "mae hong son", "pai"}},
	{"Nan", "น่าน", []string{"น่าน", "nan province"}},
	{"Lampang", "ลำปาง", []string{"ลำปาง", "lampang"}},
	{"Udon Thani", "อุดรธานี", []string{"อุดรธานี", "udon thani"}},
	{"Rayong", "ระยอง", []string{"ระยอง", "เกาะเสม็ด", "rayong", "koh samet"}},
	{"Trat", "ตราด", []string{"ตราด", "เกาะช้าง", "trat", "koh chang"}},
	{"Phetchaburi", "เพชรบุรี", []string{"เพชรบุรี", "phetchaburi"}},
	{"Nakhon Pathom", "นครปฐม", []string{"นครปฐม", "nakhon pathom"}},
}

// activity pairs a canonical activity tag with its Thai display name
// and the keywords that resolve to it.
type activity struct {
	Tag     string
	Thai    string
	Aliases []string
}

var activities = []activity{
	{"temple", "วัด", []string{"วัด", "temple", "temples", "wat"}},
	{"museum", "พิพิธภัณฑ์", []string{"พิพิธภัณฑ์", "museum", "museums"}},
	{"beach", "ชายหาด", []string{"ชายหาด", "หาด", "ทะเล", "beach", "beaches", "sea"}},
	{"mountain", "ภูเขา", []string{"ภูเขา", "ดอย", "mountain", "mountains"}},
	{"waterfall", "น้ำตก", []string{"น้ำตก", "waterfall", "waterfalls"}},
	{"nature", "ธรรมชาติ", []string{"ธรรมชาติ", "อุทยานแห่งชาติ", "อุทยาน", "nature", "national park"}},
	{"island", "เกาะ", []string{"เกาะ", "island", "islands"}},
	{"market", "ตลาด", []string{"ตลาดน้ำ", "ตลาดนัด", "ตลาด", "market", "markets", "night market", "floating market"}},
	{"shopping", "ช้อปปิ้ง", []string{"ช้อปปิ้ง", "ห้างสรรพสินค้า", "ห้าง", "shopping", "mall"}},
	{"food", "อาหาร", []string{"ร้านอาหาร", "อาหาร", "food", "restaurant", "restaurants", "street food"}},
	{"cafe", "คาเฟ่", []string{"คาเฟ่", "ร้านกาแฟ", "cafe", "cafes", "coffee"}},
	{"history", "ประวัติศาสตร์", []string{"ประวัติศาสตร์", "โบราณสถาน", "history", "historical", "ruins"}},
	{"culture", "วัฒนธรรม", []string{"วัฒนธรรม", "ประเพณี", "culture", "cultural", "tradition"}},
	{"hiking", "เดินป่า", []string{"เดินป่า", "เดินเขา", "hiking", "trekking"}},
	{"diving", "ดำน้ำ", []string{"ดำน้ำ", "diving", "snorkeling", "snorkelling"}},
}

// stopwords are consumed during keyword extraction and never become keywords.
var stopwords = []string{
	// Thai function words, particles and filler
	"ครับ", "ค่ะ", "คะ", "ค่า", "นะ", "จ้า", "หน่อย", "ด้วย", "บ้าง", "ผม", "ฉัน", "เรา", "ดิฉัน", "คุณ",
	"อยาก", "ต้องการ", "อยากไป", "ไป", "หา", "ค้นหา", "มี", "ไหม", "มั้ย", "หรือเปล่า", "ที่", "และ", "หรือ",
	"ของ", "เป็น", "จะ", "ได้", "แล้ว", "กับ", "ก็", "ให้", "สวยๆ", "สวย", "ดีๆ", "ดี", "เยอะๆ", "ๆ",
	"บอก", "ช่วย", "อะไร", "ยังไง", "อย่างไร", "ไหน", "ตรงไหน", "วันนี้", "นี้", "นั้น", "เลย", "แบบ",
	// English
	"the", "a", "an", "and", "or", "but", "on", "at", "to", "for", "of", "with", "by", "from",
	"is", "are", "was", "were", "be", "been", "have", "has", "had", "do", "does", "did", "any",
	"will", "would", "could", "should", "may", "might", "can", "must", "this", "that", "these", "those",
	"i", "you", "he", "she", "it", "we", "they", "me", "my", "your", "our", "their", "some",
	"very", "really", "just", "so", "too", "also", "much", "many", "please", "want", "like",
	"there", "here", "go", "see", "nice", "good", "beautiful", "something", "anything",
}

// questionMarkers boost get_details when present.
var questionMarkers = []string{
	"ไหม", "มั้ย", "อะไร", "ยังไง", "อย่างไร", "หรือเปล่า", "?",
	"what", "how", "which", "is there", "are there",
}

var (
	provinceByAlias = map[string]*province{}
	provinceByName  = map[string]*province{}
	activityByAlias = map[string]*activity{}
	activityByTag   = map[string]*activity{}
)

func init() {
	for i := range provinces {
		p := &provinces[i]
		provinceByName[strings.ToLower(p.Canonical)] = p
		for _, a := range p.Aliases {
			provinceByAlias[normalize(a)] = p
		}
	}
	for i := range activities {
		a := &activities[i]
		activityByTag[a.Tag] = a
		for _, alias := range a.Aliases {
			activityByAlias[normalize(alias)] = a
		}
	}
}

// CanonicalProvince resolves a Thai or English place name to its canonical English
// province name.
func CanonicalProvince(name string) (string, bool) {
	key := normalize(name)
	if p, ok := provinceByAlias[key]; ok {
		return p.Canonical, true
	}
	if p, ok := provinceByName[key]; ok {
		return p.Canonical, true
	}
	return "", false
}

// ThaiProvinceName returns the Thai display name of a canonical province,
// or the input unchanged when it is not in the table.
func ThaiProvinceName(canonical string) string {
	if p, ok := provinceByName[strings.ToLower(canonical)]; ok {
		return p.Thai
	}
	return canonical
}

// CanonicalActivity resolves an activity keyword or tag to its canonical tag.
func CanonicalActivity(word string) (string, bool) {
	key := normalize(word)
	if a, ok := activityByTag[key]; ok {
		return a.Tag, true
	}
	if a, ok := activityByAlias[key]; ok {
		return a.Tag, true
	}
	return "", false
}

// ThaiActivityName returns the Thai display name of an activity tag.
func ThaiActivityName(tag string) string {
	if a, ok := activityByTag[tag]; ok {
		return a.Thai
	}
	return tag
}

// ActivityTags lists every canonical activity tag.
func ActivityTags() []string {
	tags := make([]string, 0, len(activities))
	for _, a := range activities {
		tags = append(tags, a.Tag)
	}
	return tags
}
