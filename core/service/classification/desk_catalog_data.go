package classification

import "desk_server/core/domain"

// Built-in pattern catalog. Patterns are data: the detectors address groups
// by name and never embed vocabulary. A deployment can replace any group
// through the persisted override store (see MergeOverrides).
//
// Short Cyrillic words use explicit space/anchor boundaries instead of \b,
// which only understands ASCII word characters.

func kw(group domain.PatternGroup, lang domain.Language, words ...string) []*domain.PatternRule {
	rules := make([]*domain.PatternRule, 0, len(words))
	for _, w := range words {
		rules = append(rules, &domain.PatternRule{
			Group:    group,
			Kind:     domain.PatternKeyword,
			Pattern:  w,
			Language: lang,
			IsActive: true,
		})
	}
	return rules
}

func rx(group domain.PatternGroup, lang domain.Language, pattern string) *domain.PatternRule {
	return &domain.PatternRule{
		Group:    group,
		Kind:     domain.PatternRegex,
		Pattern:  pattern,
		Language: lang,
		IsActive: true,
	}
}

func exact(group domain.PatternGroup, intent domain.Intent, autoReply bool, lang domain.Language, pattern string) *domain.PatternRule {
	return &domain.PatternRule{
		Group:     group,
		Kind:      domain.PatternExact,
		Pattern:   pattern,
		Language:  lang,
		Intent:    intent,
		AutoReply: autoReply,
		IsActive:  true,
	}
}

// DefaultRules returns the built-in catalog.
func DefaultRules() []*domain.PatternRule {
	var rules []*domain.PatternRule

	add := func(rs ...*domain.PatternRule) { rules = append(rules, rs...) }

	// =========================================================================
	// Fast path: fixed-form utterances (anchored whole-text)
	// =========================================================================

	add(
		exact(domain.GroupGreeting, domain.IntentGreeting, true, domain.LangRussian,
			`здравствуйте|здрасте|привет(ик)?|добрый (день|вечер)|доброе утро|доброй ночи`),
		exact(domain.GroupGreeting, domain.IntentGreeting, true, domain.LangUzLatin,
			`salom|assalom(u alaykum)?|assalomu aleykum|salom alaykum`),
		exact(domain.GroupGreeting, domain.IntentGreeting, true, domain.LangUzCyrillic,
			`салом|ассалом(у алайкум)?`),
		exact(domain.GroupGreeting, domain.IntentGreeting, true, domain.LangEnglish,
			`hello|hi|hey|good (morning|afternoon|evening)`),

		exact(domain.GroupGratitude, domain.IntentGratitude, true, domain.LangRussian,
			`спасибо( большое| огромное| вам)?|благодарю|благодарим( вас)?`),
		exact(domain.GroupGratitude, domain.IntentGratitude, true, domain.LangUzLatin,
			`(katta )?ra[hx]mat( sizga)?|tashakkur`),
		exact(domain.GroupGratitude, domain.IntentGratitude, true, domain.LangUzCyrillic,
			`(катта )?ра[ҳх]мат( сизга)?|ташаккур`),
		exact(domain.GroupGratitude, domain.IntentGratitude, true, domain.LangEnglish,
			`thanks|thank you( very much)?|thx`),

		exact(domain.GroupClosing, domain.IntentClosing, true, domain.LangRussian,
			`до свидания|всего (доброго|хорошего)|хорошего (дня|вечера)|удачи`),
		exact(domain.GroupClosing, domain.IntentClosing, true, domain.LangUzLatin,
			`[xh]ayr|yaxshi qoling|ko['’ʻ]?rishguncha`),
		exact(domain.GroupClosing, domain.IntentClosing, true, domain.LangUzCyrillic,
			`хайр|яхши қолинг|кўришгунча`),
		exact(domain.GroupClosing, domain.IntentClosing, true, domain.LangEnglish,
			`bye|goodbye|see you`),

		exact(domain.GroupShortConfirmation, domain.IntentResponse, false, domain.LangRussian,
			`ок|окей|хорошо|понятно|понял(а)?|ясно|ладно|угу|ага|да|принято|\+`),
		exact(domain.GroupShortConfirmation, domain.IntentResponse, false, domain.LangUzLatin,
			`ok|okay|[hx]a|[xh]o['’ʻ]?p|mayli|tushunarli|tushundim|yaxshi|bo['’ʻ]?ldi`),
		exact(domain.GroupShortConfirmation, domain.IntentResponse, false, domain.LangUzCyrillic,
			`ҳа|хоп|майли|тушунарли|тушундим|яхши|бўлди`),
		exact(domain.GroupShortConfirmation, domain.IntentResponse, false, domain.LangEnglish,
			`got it|sure|understood`),

		exact(domain.GroupFAQPricing, domain.IntentFAQPricing, true, domain.LangRussian,
			`сколько( это)? стоит|какая цена|цена|какие тарифы|тарифы|прайс( |-)?(лист)?`),
		exact(domain.GroupFAQPricing, domain.IntentFAQPricing, true, domain.LangUzLatin,
			`narxi qancha|qancha turadi|narxlar(ni ayting)?|tariflar(ingiz)?`),
		exact(domain.GroupFAQPricing, domain.IntentFAQPricing, true, domain.LangUzCyrillic,
			`нархи қанча|қанча туради|нархлар|тарифлар`),
		exact(domain.GroupFAQPricing, domain.IntentFAQPricing, true, domain.LangEnglish,
			`how much( does it cost)?|price( list)?|pricing`),

		exact(domain.GroupFAQHours, domain.IntentFAQHours, true, domain.LangRussian,
			`график работы|время работы|режим работы|до скольки работаете|когда( вы)? работаете`),
		exact(domain.GroupFAQHours, domain.IntentFAQHours, true, domain.LangUzLatin,
			`ish vaqti(ngiz)?( qanday)?|qachon ishlaysiz(lar)?|soat nechagacha ishlaysiz(lar)?`),
		exact(domain.GroupFAQHours, domain.IntentFAQHours, true, domain.LangUzCyrillic,
			`иш вақти(нгиз)?|қачон ишлайсиз(лар)?`),
		exact(domain.GroupFAQHours, domain.IntentFAQHours, true, domain.LangEnglish,
			`working hours|opening hours|when are you open`),

		exact(domain.GroupFAQContacts, domain.IntentFAQContacts, true, domain.LangRussian,
			`контакты|ваш (номер|телефон|адрес)|какой( у вас)? (адрес|номер)|адрес`),
		exact(domain.GroupFAQContacts, domain.IntentFAQContacts, true, domain.LangUzLatin,
			`manzil(ingiz)?( qayerda)?|telefon raqam(ingiz)?|aloqa uchun`),
		exact(domain.GroupFAQContacts, domain.IntentFAQContacts, true, domain.LangUzCyrillic,
			`манзил(ингиз)?|телефон рақам(ингиз)?`),
		exact(domain.GroupFAQContacts, domain.IntentFAQContacts, true, domain.LangEnglish,
			`contacts?|address|phone number`),
	)

	// =========================================================================
	// Problem vocabulary
	// =========================================================================

	add(kw(domain.GroupProblemRu, domain.LangRussian,
		"не работает", "не работают", "не открывается", "не открываются",
		"не загружается", "не грузится", "не приходит", "не приходят",
		"не отправляется", "не могу", "не получается", "не печатает",
		"перестал", "перестала", "перестало", "сломал", "сломалось",
		"ошибка", "ошибку", "ошибки", "сбой", "баг", "глюк", "глючит",
		"зависает", "зависла", "висит", "вылетает", "пропал", "пропали",
		"проблема", "проблемы", "проблему")...)

	add(kw(domain.GroupProblemUzLatin, domain.LangUzLatin,
		"ishlamayapti", "ishlamaydi", "ishlamay qoldi", "ishlamavoti",
		"ochilmayapti", "ochilmaydi", "yuklanmayapti", "kelmayapti",
		"kelmadi", "chiqmayapti", "kirmayapti", "kira olmayapman",
		"bo'lmayapti", "bulmayapti", "xato", "xatolik", "hato",
		"muammo", "buzildi", "buzilib qoldi", "osilib qoldi")...)
	// Negated verb suffixes (-may, -madi, -maydi, -maypti) catch
	// transliteration variants the keyword list misses.
	add(rx(domain.GroupProblemUzLatin, domain.LangUzLatin,
		`[a-z'’ʻ]{4,}(mayapti|maydi|madi|maypti)(\s|$|[.,!?])`))

	add(kw(domain.GroupProblemUzCyr, domain.LangUzCyrillic,
		"ишламаяпти", "ишламайди", "ишламай қолди", "очилмаяпти",
		"келмаяпти", "чиқмаяпти", "кирмаяпти", "хато", "хатолик",
		"муаммо", "бузилди", "осилиб қолди")...)

	add(kw(domain.GroupProblemEn, domain.LangEnglish,
		"not working", "doesn't work", "does not work", "can't", "cannot",
		"won't", "broken", "crash", "crashes", "freezes", "stuck",
		"error", "errors", "fails", "failing", "failure",
		"issue with", "problem with")...)

	// Raw technical tokens from pasted system errors.
	add(kw(domain.GroupErrorTokens, domain.LangEnglish,
		"invalid", "exception", "failed", "timeout", "stack trace",
		"traceback", "undefined", "null pointer", "correlationid",
		"response.error", "internal server error")...)
	add(rx(domain.GroupErrorTokens, domain.LangEnglish, `error[:=]`))
	add(rx(domain.GroupErrorTokens, domain.LangEnglish,
		`[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}`))

	// Contrast conjunctions: a business term plus "but/however" is presumed
	// to report an unexpected result even without negative vocabulary.
	add(
		rx(domain.GroupContrastMarkers, domain.LangRussian, `(^|\s)(но|однако|хотя)(\s|$)`),
		rx(domain.GroupContrastMarkers, domain.LangUzLatin, `(^|\s)(lekin|ammo|biroq)(\s|$)`),
		rx(domain.GroupContrastMarkers, domain.LangUzCyrillic, `(^|\s)(лекин|аммо|бироқ)(\s|$)`),
		rx(domain.GroupContrastMarkers, domain.LangEnglish, `(^|\s)(but|however)(\s|$)`),
	)
	add(
		rx(domain.GroupDifferentMarkers, domain.LangRussian, `друг(ой|ая|ое|ие)|не (тот|та|то)(\s|$)`),
		rx(domain.GroupDifferentMarkers, domain.LangUzLatin, `(^|\s)boshqa(cha)?(\s|$)`),
		rx(domain.GroupDifferentMarkers, domain.LangUzCyrillic, `(^|\s)бошқа(ча)?(\s|$)`),
		rx(domain.GroupDifferentMarkers, domain.LangEnglish, `(^|\s)(different|another|wrong)(\s|$)`),
	)
	add(kw(domain.GroupBusinessContext, domain.LangMixed,
		"чек", "заказ", "филиал", "скидк", "сумм", "счет", "счёт", "оплат",
		"цена", "цену", "chek", "buyurtma", "filial", "chegirma", "skidka",
		"summa", "narx", "to'lov", "tolov", "буюртма", "чегирма",
		"order", "invoice", "discount", "branch")...)

	// =========================================================================
	// Billing
	// =========================================================================

	add(kw(domain.GroupBilling, domain.LangMixed,
		"оплата", "оплату", "оплаты", "платеж", "платёж", "счет", "счёт",
		"сумма", "сумму", "суммы", "списание", "списали", "деньги",
		"to'lov", "tolov", "pul", "summa", "тўлов", "пул",
		"payment", "invoice", "billing", "чек")...)

	add(kw(domain.GroupBillingComplaint, domain.LangMixed,
		"неправильная сумма", "неверная сумма", "не та сумма",
		"сумма не сходится", "сумма не совпадает", "переплата",
		"списали больше", "списали дважды", "двойное списание",
		"лишние деньги", "wrong amount", "overcharged", "double charge",
		"charged twice")...)
	// "why X if Y" price discrepancy phrasing
	add(rx(domain.GroupBillingComplaint, domain.LangMixed,
		`(почему|отчего|как так|нега|нимага|nega|nimaga)[^?]*\d+[^?]*(если|хотя|вчера|было|agar|edi)[^?]*\d+`))
	// explicit numeric-vs-numeric comparison
	add(rx(domain.GroupBillingComplaint, domain.LangMixed,
		`\d+[^\d]{0,24}(вместо|а не|o['’ʻ]?rniga|urniga|instead of)[^\d]{0,24}\d+`))
	// "why is the amount bigger/smaller" question
	add(rx(domain.GroupBillingComplaint, domain.LangMixed,
		`(почему|отчего|нега|nega)\s+(сумма|цена|чек|summa|narx)[^?]*(больше|меньше|выше|ниже|выросла|katta|kichik|oshdi|ko['’ʻ]?p)`))

	add(kw(domain.GroupBillingUz, domain.LangUzLatin,
		"summa noto'g'ri", "summa notogri", "noto'g'ri summa",
		"notogri summa", "ortiqcha pul", "pul yechildi",
		"ikki marta yechildi", "pul qaytmadi")...)
	add(kw(domain.GroupBillingUz, domain.LangUzCyrillic,
		"сумма нотўғри", "нотўғри сумма", "ортиқча пул", "пул ечилди",
		"икки марта ечилди", "пул қайтмади")...)

	// =========================================================================
	// Onboarding, media evidence, urgency
	// =========================================================================

	add(kw(domain.GroupOnboarding, domain.LangMixed,
		"подключить", "подключиться", "подключение", "как подключ",
		"зарегистрировать", "регистрация", "новый клиент", "новая точка",
		"хотим работать с вами", "сотрудничество",
		"ulanish", "ulanmoqchi", "ulab bering", "qanday ulan",
		"ro'yxatdan o'tish", "royxatdan otish", "yangi mijoz", "hamkorlik",
		"уланиш", "рўйхатдан ўтиш", "янги мижоз", "ҳамкорлик",
		"how to connect", "sign up", "register")...)

	add(kw(domain.GroupMediaEvidence, domain.LangMixed,
		"фото", "фотографи", "скрин", "скриншот", "видео", "посмотрите",
		"гляньте", "прикрепил", "прикрепила",
		"rasm", "surat", "skrin", "skrinshot", "video", "qarang",
		"ko'ring", "kuring", "расм", "қаранг", "кўринг",
		"photo", "screenshot", "attached")...)

	for _, r := range kw(domain.GroupUrgency, domain.LangMixed,
		"срочно", "срочный", "срочная", "очень срочно", "быстрее",
		"побыстрее", "скорее", "как можно скорее", "немедленно", "горит",
		"asap", "urgent", "urgently", "immediately",
		"tezroq", "tezda", "zudlik bilan", "shoshilinch",
		"тезроқ", "зудлик билан", "шошилинч") {
		r.UrgencyScore = 4
		add(r)
	}

	// =========================================================================
	// Sentiment / intent vocabulary
	// =========================================================================

	add(kw(domain.GroupPositive, domain.LangMixed,
		"спасибо", "отлично", "прекрасно", "супер", "класс", "здорово",
		"молодцы", "все работает", "всё работает", "заработало", "помогло",
		"rahmat", "raxmat", "zo'r", "ajoyib", "yaxshi ishlayapti",
		"ishladi", "tuzaldi", "раҳмат", "рахмат", "зўр", "ажойиб",
		"great", "awesome", "perfect", "works now", "thank")...)

	add(kw(domain.GroupFrustration, domain.LangMixed,
		"сколько можно", "сколько ждать", "опять", "снова не",
		"до сих пор не", "уже неделю", "надоело", "достало", "ужас",
		"ужасно", "кошмар", "безобразие", "невозможно работать",
		"yana ishlamayapti", "yana o'sha", "qachongacha", "necha marta",
		"jonga tegdi", "яна ишламаяпти", "қачонгача", "неча марта",
		"terrible", "horrible", "ridiculous", "fed up", "sick of")...)

	add(kw(domain.GroupComplaint, domain.LangMixed,
		"жалоба", "жаловаться", "недоволен", "недовольна", "недовольны",
		"возмущен", "возмущена", "обман", "обманули", "плохо работаете",
		"плохой сервис", "отвратительно",
		"shikoyat", "norozi", "noroziman", "aldov", "aldadingiz",
		"yomon xizmat", "шикоят", "норози", "алдов",
		"complaint", "disappointed", "dissatisfied", "scam")...)

	add(kw(domain.GroupQuestion, domain.LangMixed,
		"почему", "зачем", "когда", "сколько", "можно ли", "что делать",
		"какой", "какая", "куда", "где",
		"nega", "nimaga", "qanday", "qachon", "qayerda", "qancha",
		"mumkinmi", "nima qilay",
		"нега", "нимага", "қандай", "қачон", "қаерда", "қанча", "мумкинми",
		"why", "how", "when", "where", "can i", "is it possible")...)
	// Question openers for implicit complaints phrased as questions.
	add(rx(domain.GroupQuestionOpener, domain.LangMixed,
		`^(почему|отчего|как так|нега|нимага|nega|nimaga|why|how come)([\s,]|$)`))

	add(kw(domain.GroupDesire, domain.LangMixed,
		"хочу", "хотим", "хотелось бы", "нужно", "нужен", "нужна", "надо",
		"можно добавить", "добавьте", "сделайте", "было бы хорошо",
		"не хватает", "xohlayman", "xohlaymiz", "istayman", "kerak",
		"qo'shing", "qoshing", "qo'shib bering",
		"хоҳлайман", "керак", "қўшинг",
		"please add", "would like", "i want", "we need")...)

	// =========================================================================
	// Category keyword sets
	// =========================================================================

	add(kw(domain.GroupIntegration, domain.LangMixed,
		"интеграция", "интеграцию", "интеграции", "api", "апи", "webhook",
		"вебхук", "1c", "1с", "iiko", "айко", "r-keeper", "r keeper",
		"кипер", "crm", "срм", "integratsiya", "токен", "token")...)

	add(kw(domain.GroupOrder, domain.LangMixed,
		"заказ", "заказы", "заказов", "заказа", "buyurtma", "buyurtmalar",
		"буюртма", "order")...)

	add(kw(domain.GroupDelivery, domain.LangMixed,
		"доставка", "доставку", "доставки", "доставить", "курьер",
		"курьера", "dostavka", "yetkazib berish", "etkazib", "kuryer",
		"етказиб", "курер", "delivery", "courier")...)

	add(kw(domain.GroupBranch, domain.LangMixed,
		"филиал", "филиала", "филиалы", "филиале", "отделение",
		"filial", "filialda", "shoxobcha", "branch")...)

	add(kw(domain.GroupMenu, domain.LangMixed,
		"меню", "блюдо", "блюда", "позиция меню", "позиции",
		"menyu", "taom", "taomlar", "ovqat", "dish")...)

	add(kw(domain.GroupApp, domain.LangMixed,
		"приложение", "приложении", "приложением", "ilova", "ilovada",
		"mobil ilova", "apk", "илова", "mobile app", "application")...)

	return rules
}
