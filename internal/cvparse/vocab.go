package cvparse

// Fixed vocabularies for the keyword-membership rules. None of these are
// exhaustive; an unmatched vocabulary yields an empty field.

var cityVocabulary = []string{
	"תל אביב", "ירושלים", "חיפה", "באר שבע", "ראשון לציון", "פתח תקווה",
	"אשדוד", "נתניה", "חולון", "בני ברק", "רמת גן", "בת ים", "רחובות",
	"אשקלון", "הרצליה", "כפר סבא", "חדרה", "מודיעין", "נצרת", "רעננה",
	"גבעתיים", "קרית גת", "אילת", "עפולה", "טבריה", "צפת",
	"Tel Aviv", "Jerusalem", "Haifa", "Beer Sheva", "Netanya", "Ashdod",
	"Herzliya", "Ramat Gan", "Rishon Lezion", "Petah Tikva",
}

var professionVocabulary = []string{
	"מתכנת", "מפתח תוכנה", "מהנדס תוכנה", "מהנדס", "הנדסאי", "טכנאי",
	"חשמלאי", "נהג", "מלגזן", "טבח", "מלצר", "מוכר", "קופאי", "מחסנאי",
	"מנהל חשבונות", "הנהלת חשבונות", "מזכירה", "פקיד", "נציג שירות",
	"נציג מכירות", "איש מכירות", "רתך", "מסגר", "נגר", "אינסטלטור",
	"גנן", "מאבטח", "שומר", "סייעת", "גננת", "מורה", "אחות",
	"רוקח", "עורך דין", "רואה חשבון", "אדריכל", "גרפיקאי",
	"software engineer", "software developer", "developer", "programmer",
	"qa engineer", "devops", "data scientist", "product manager",
	"project manager", "accountant", "bookkeeper", "electrician", "driver",
	"welder", "technician", "salesperson", "teacher", "nurse",
}

var maritalVocabulary = []struct {
	status   string
	keywords []string
}{
	{status: "married", keywords: []string{"נשוי", "נשואה", "married"}},
	{status: "divorced", keywords: []string{"גרוש", "גרושה", "divorced"}},
	{status: "widowed", keywords: []string{"אלמן", "אלמנה", "widowed"}},
	{status: "single", keywords: []string{"רווק", "רווקה", "single"}},
}

var licensePhrases = []string{
	"רישיון נהיגה", "רשיון נהיגה", "driving license", "driver's license",
	"drivers license",
}

var achievementKeywords = []string{
	"הישגים", "achievements", "accomplishments",
}
