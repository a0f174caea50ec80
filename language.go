package choicescript

import (
	"path"
	"regexp"
	"strings"
)

type set map[string]bool

func newSet(words ...string) set {
	s := make(set, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}

// ValidCommands lists every command ChoiceScript accepts, in the order
// suggestions for misspellings are tried.
var ValidCommands = []string{
	"comment", "goto", "gotoref", "label", "looplimit", "finish", "abort", "choice", "create", "temp",
	"delete", "set", "setref", "print", "if", "selectable_if", "rand", "page_break", "line_break", "script", "else",
	"elseif", "elsif", "reset", "goto_scene", "fake_choice", "input_text", "ending", "share_this_game",
	"stat_chart", "subscribe", "show_password", "gosub", "return", "hide_reuse", "disable_reuse", "allow_reuse",
	"check_purchase", "restore_purchases", "purchase", "restore_game", "advertisement",
	"feedback", "save_game", "delay_break", "image", "link", "input_number", "goto_random_scene",
	"restart", "more_games", "delay_ending", "end_trial", "login", "achieve", "scene_list", "title",
	"bug", "link_button", "check_registration", "sound", "author", "gosub_scene", "achievement",
	"check_achievements", "redirect_scene", "print_discount", "purchase_discount", "track_event",
	"timer", "youtube", "product", "text_image", "params", "config",
}

var (
	validCommands = newSet(ValidCommands...)

	// startupCommands may only appear in startup.txt.
	startupCommands = newSet("create", "scene_list", "title", "author", "achievement", "product")

	argumentRequiringCommands = newSet(
		"achieve", "achievement", "author", "create", "delete", "elseif", "elsif", "gosub",
		"gosub_scene", "goto", "goto_scene", "gotoref", "if", "image", "input_number", "input_text",
		"label", "link", "print", "product", "rand", "redirect_scene", "selectable_if", "set",
		"setref", "sound", "temp", "title",
	)

	symbolCreationCommands       = []string{"create", "temp", "label"}
	variableManipulationCommands = []string{"delete", "set", "rand", "input_text", "input_number", "params"}
	symbolManipulationCommands   = newSet(append(symbolCreationCommands, variableManipulationCommands...)...)

	variableReferenceCommands = newSet("if", "elseif", "elsif", "selectable_if")
	flowControlCommands       = newSet("goto", "gosub", "goto_scene", "gosub_scene", "return")

	// reuseCommands may be followed on the same line by *if or *selectable_if.
	reuseCommands = newSet("hide_reuse", "disable_reuse", "allow_reuse")

	statChartCommands      = []string{"text", "percent", "opposed_pair"}
	statChartBlockCommands = newSet("opposed_pair")
)

var builtinVariables = newSet(
	"choice_subscribe_allowed", "choice_register_allowed", "choice_registered",
	"choice_is_web", "choice_is_steam", "choice_is_ios_app", "choice_is_android_app",
	"choice_is_omnibus_app", "choice_is_amazon_app", "choice_is_advertising_supported",
	"choice_is_trial", "choice_release_date", "choicescript_game_id", "choice_user_restored",
	"choice_save_allowed", "choice_time_stamp", "choice_nightmode", "choice_purchased_adfree",
	"choice_purchase_supported", "choice_randomtest", "choice_quicktest",
	"choice_restore_purchases_allowed", "choice_kindle", "choice_title",
)

var (
	functions         = newSet("not", "round", "timestamp", "log", "length", "auto")
	booleanFunctions  = newSet("not")
	numberFunctions   = newSet("round", "timestamp", "log", "length")
	booleanNamedWords = newSet("and", "or")
	numericNamedWords = newSet("modulo")
	namedValues       = newSet("true", "false")

	// symbolicOperators is ordered longest first so the tokenizer can take
	// the first prefix that matches.
	symbolicOperators = []string{"%+", "%-", "<=", ">=", "!=", "<>", "+", "-", "*", "/", "%", "&", "=", "<", ">"}

	numberSetOperators = newSet("+", "-", "*", "/", "%+", "%-", "%", "modulo")
	stringSetOperators = newSet("&")
)

var (
	// topLevelPattern finds, in order of preference, a command at the start
	// of a line, a replacement opener and a multireplace opener.
	topLevelPattern = regexp.MustCompile(`(\n|^)([ \t]*)\*(\w+)(?:([ \t]+)([^\r\n]*))?|(\$!?!?\{)|(@!?!?\{)`)

	multiStartPattern = regexp.MustCompile(`@!?!?\{`)

	// stringDelimiterPattern finds what ends or interrupts a quoted string.
	stringDelimiterPattern = regexp.MustCompile(`\$!?!?\{|@!?!?\{|"`)
	bareStringPattern      = regexp.MustCompile(`\$!?!?\{|@!?!?\{`)

	// lineCommandPattern finds the command that starts a line.
	lineCommandPattern = regexp.MustCompile(`^[ \t]*\*(\w+)`)

	wordPattern     = regexp.MustCompile(`\w+`)
	symbolPattern   = regexp.MustCompile(`(\w+)(?:(\s+)(.+))?`)
	scenePattern    = regexp.MustCompile(`^([ \t]+)(\$\s*)?(\S+)[ \t]*\r?\n?$`)
	statPattern     = regexp.MustCompile(`^([ \t]+)(\S+)([ \t]*)([^\r\n]*)`)
	codenamePattern = regexp.MustCompile(`^\S+`)

	// stylePattern finds runs that may break the Choice of Games style
	// guide and commands that may not start their line.
	stylePattern = regexp.MustCompile(`\.{2,}|-{2,}|\*(\w+)`)

	achievementVariablePattern = regexp.MustCompile(`^choice_achieved_(\w+)$`)
	parameterVariablePattern   = regexp.MustCompile(`^param_\d+$`)
)

// IsStartupFile reports whether uri names a project's startup file.
func IsStartupFile(uri string) bool {
	return filename(uri) == "startup.txt"
}

// filename returns the last element of a URI's path.
func filename(uri string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	return path.Base(uri)
}

// variableIsAchievement reports whether name is the choice_achieved_
// variable of a known achievement.
func variableIsAchievement(name string, achievements IdentifierIndex) bool {
	m := achievementVariablePattern.FindStringSubmatch(name)
	if m == nil {
		return false
	}
	_, ok := achievements[m[1]]
	return ok
}

// variableIsPossibleParameter reports whether name could hold a *params
// argument.
func variableIsPossibleParameter(name string) bool {
	return parameterVariablePattern.MatchString(name)
}
