package triage

import "desk_server/core/domain"

// autoReplyTemplates holds the canned responses for auto-reply eligible
// intents, keyed by detected language. Russian is the fallback for mixed
// or undetected languages.
var autoReplyTemplates = map[domain.Intent]map[domain.Language]string{
	domain.IntentGreeting: {
		domain.LangRussian:    "Здравствуйте! Мы получили ваше сообщение и скоро ответим.",
		domain.LangUzLatin: "Assalomu alaykum! Xabaringizni oldik, tez orada javob beramiz.",
		domain.LangUzCyrillic:   "Ассалому алайкум! Хабарингизни олдик, тез орада жавоб берамиз.",
		domain.LangEnglish:    "Hello! We received your message and will reply shortly.",
	},
	domain.IntentGratitude: {
		domain.LangRussian:    "Пожалуйста! Обращайтесь, если появятся вопросы.",
		domain.LangUzLatin: "Arzimaydi! Savollaringiz bo'lsa, murojaat qiling.",
		domain.LangUzCyrillic:   "Арзимайди! Саволларингиз бўлса, мурожаат қилинг.",
		domain.LangEnglish:    "You're welcome! Reach out any time.",
	},
	domain.IntentClosing: {
		domain.LangRussian:    "Всего доброго! Будем рады помочь снова.",
		domain.LangUzLatin: "Yaxshi kunlar tilaymiz! Yana murojaat qiling.",
		domain.LangUzCyrillic:   "Яхши кунлар тилаймиз! Яна мурожаат қилинг.",
		domain.LangEnglish:    "Have a great day! We're happy to help again.",
	},
	domain.IntentFAQPricing: {
		domain.LangRussian:    "Актуальные тарифы доступны на нашем сайте, менеджер также вышлет прайс в этот чат.",
		domain.LangUzLatin: "Joriy tariflar saytimizda mavjud, menejer narxlarni shu chatga yuboradi.",
		domain.LangUzCyrillic:   "Жорий тарифлар сайтимизда мавжуд, менежер нархларни шу чатга юборади.",
		domain.LangEnglish:    "Current pricing is available on our website; a manager will also send the price list here.",
	},
	domain.IntentFAQHours: {
		domain.LangRussian:    "Мы работаем ежедневно с 9:00 до 21:00. Поддержка в чате отвечает круглосуточно.",
		domain.LangUzLatin: "Har kuni 9:00 dan 21:00 gacha ishlaymiz. Chat yordami kun bo'yi ishlaydi.",
		domain.LangUzCyrillic:   "Ҳар куни 9:00 дан 21:00 гача ишлаймиз. Чат ёрдами кун бўйи ишлайди.",
		domain.LangEnglish:    "We are open daily from 9:00 to 21:00. Chat support replies around the clock.",
	},
	domain.IntentFAQContacts: {
		domain.LangRussian:    "Связаться с нами можно в этом чате или по телефону поддержки, менеджер пришлёт контакты.",
		domain.LangUzLatin: "Biz bilan shu chatda yoki qo'llab-quvvatlash telefoni orqali bog'lanishingiz mumkin.",
		domain.LangUzCyrillic:   "Биз билан шу чатда ёки қўллаб-қувватлаш телефони орқали боғланишингиз мумкин.",
		domain.LangEnglish:    "You can reach us in this chat or via the support phone line; a manager will share contacts.",
	},
}

// AutoReplyText returns the canned response for an intent in the given
// language. The second return is false when the intent has no template.
func AutoReplyText(intent domain.Intent, lang domain.Language) (string, bool) {
	byLang, ok := autoReplyTemplates[intent]
	if !ok {
		return "", false
	}
	if text, ok := byLang[lang]; ok {
		return text, true
	}
	return byLang[domain.LangRussian], true
}
