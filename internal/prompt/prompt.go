package prompt

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/igolaizola/lyricsmith/internal/plan"
)

// DefaultSystem is the system instruction the adapters were trained with.
const DefaultSystem = `Ты — поэтический генератор песен в стиле группы «Макулатура».

Правила:
- Пиши по-русски, связно и образно.
- Избегай повторов одной строки более 2 раз подряд.
- Каждая строка должна передавать образ, действие или состояние.
- Не добавляй пояснений и комментариев, только текст секций.

Стиль:
- Строки короткие, насыщенные образами (обычно до 12-15 слов).
- Используй метафоры, культурные отсылки, неожиданные сравнения.
- Не пиши объяснениями и описаниями — пиши образами.
- НИКОГДА не копируй и не пересказывай строки из контекста.

Соблюдай структуру и теги секций (<VERSE>, <CHORUS>, <OUTRO>) и атрибут speaker (alekhin/speransky/group).`

// Topics are the themes used to build the training set.
var Topics = []string{
	"отчуждение в городе", "тревога и бессонница", "память и вина", "поездка и расставание",
	"социум и одиночество", "любовь как болезнь", "зима и пустые улицы", "больница и свобода",
	"детство и стыд", "жизнь после разрыва", "алкоголь и пустота", "страх будущего",
}

// PickTopic returns a topic chosen deterministically from seed.
func PickTopic(seed int64) string {
	r := rand.New(rand.NewPCG(uint64(seed), 0))
	return Topics[r.IntN(len(Topics))]
}

type Options struct {
	System     string
	MinLines   int
	ScriptRule string
	MaxRepeats int
	ExtraRules []string
}

type Builder struct {
	system     string
	minLines   int
	scriptRule string
	maxRepeats int
	extraRules []string
}

func NewBuilder(opts Options) *Builder {
	b := &Builder{
		system:     opts.System,
		minLines:   opts.MinLines,
		scriptRule: opts.ScriptRule,
		maxRepeats: opts.MaxRepeats,
		extraRules: append([]string(nil), opts.ExtraRules...),
	}
	if strings.TrimSpace(b.system) == "" {
		b.system = DefaultSystem
	}
	if b.minLines <= 0 {
		b.minLines = 8
	}
	if b.scriptRule == "" {
		b.scriptRule = "Запрещено использовать латиницу."
	}
	if b.maxRepeats <= 0 {
		b.maxRepeats = 2
	}
	return b
}

func (b *Builder) System() string {
	return b.system
}

// Build returns the user prompt for one section.
func (b *Builder) Build(theme string, sec plan.Section, context string) string {
	var rules strings.Builder
	rules.WriteString("Сгенерируй РОВНО ОДНУ секцию.\n")
	fmt.Fprintf(&rules, "Секция должна начинаться строкой:\n%s\n", sec.OpenTag())
	fmt.Fprintf(&rules, "и заканчиваться строкой:\n%s\n", sec.CloseTag())
	fmt.Fprintf(&rules, "Минимум %d строк текста внутри секции.\n", b.minLines)
	rules.WriteString(b.scriptRule + "\n")
	fmt.Fprintf(&rules, "Запрещено повторять одну и ту же строку более %d раз подряд.\n", b.maxRepeats)
	rules.WriteString("Каждая строка должна содержать конкретный образ/действие/наблюдение.\n")
	for _, r := range b.extraRules {
		rules.WriteString(strings.TrimSpace(r) + "\n")
	}
	rules.WriteString("Никаких пояснений — только секция.\n")

	context = strings.TrimSpace(context)
	if context == "" {
		return fmt.Sprintf("Тема: %s\n%s\n", theme, rules.String())
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Тема: %s\n", theme)
	out.WriteString(rules.String())
	out.WriteString("\nНе повторяй и не переписывай строки из контекста. Каждая строка должна быть новой.\n\n")
	out.WriteString("КОНТЕКСТ (предыдущие секции, чтобы продолжать связно):\n")
	out.WriteString(context)
	out.WriteString("\n")
	return out.String()
}
