package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/api"
	"github.com/trezcool/masomo-admin/core/controller"
	"github.com/trezcool/masomo-admin/core/querycache"
	"github.com/trezcool/masomo-admin/core/session"
	"github.com/trezcool/masomo-admin/core/user"
	notifysvc "github.com/trezcool/masomo-admin/services/notify"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf      *core.Config
	logger    core.Logger
	validator *core.Validator
	store     *session.Store
	client    *api.Client
	usrSvc    *user.Service
	guard     *controller.Guard
	cache     *querycache.Cache
	notifier  *notifysvc.Console
	nav       controller.Navigator
	confirmer controller.Confirmer
	out       io.Writer
}

// newCommandLine wires the dashboard core over `storage` and reconciles the persisted session.
func newCommandLine(conf *core.Config, logger core.Logger, validator *core.Validator, storage session.Storage, in io.Reader, out io.Writer) (*commandLine, error) {
	store := session.New(storage, logger, nil)
	client, err := api.NewClient(api.Options{BaseURL: conf.API.BaseURL, Timeout: conf.API.Timeout, Tokens: store})
	if err != nil {
		return nil, err
	}
	usrSvc := user.NewService(client, validator)
	store.SetProfileFetcher(usrSvc.FetchProfile)

	cli := &commandLine{
		conf:      conf,
		logger:    logger,
		validator: validator,
		store:     store,
		client:    client,
		usrSvc:    usrSvc,
		cache:     querycache.New(0),
		notifier:  notifysvc.NewConsole(out, ""),
		nav:       terminalNavigator{out: out},
		confirmer: promptConfirmer{in: bufio.NewReader(in), out: out},
		out:       out,
	}
	cli.guard = controller.NewGuard(store, cli.nav, logger, conf.SignInPath)
	cli.guard.OnTeardown(cli.cache.Clear)
	cli.guard.Attach(client)

	store.Restore()
	store.InitializeAuth()
	return cli, nil
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME|EMAIL - sign in; the password will be prompted next")
	fmt.Fprintln(cli.out, "  logout - sign out")
	fmt.Fprintln(cli.out, "  refresh - rotate the session's tokens")
	fmt.Fprintln(cli.out, "  whoami [-refresh] - show the signed in user")
	fmt.Fprintln(cli.out, "  list -resource RESOURCE [-search S] [-page N] [-limit N] [-sort FIELD] [-order asc|desc] [-filter key=value] [-local-sort COLUMN] [-local-order asc|desc] [-local-match S]")
	fmt.Fprintln(cli.out, "  delete -resource RESOURCE -id ID [-yes] - delete an item")
	fmt.Fprintln(cli.out, "  create-class -name NAME -semester Ganjil|Genap [-year YYYY/YYYY] [-grade N] [-teacher ID]")
	fmt.Fprintln(cli.out, "  rename-quiz -id ID -title TITLE")
	fmt.Fprintln(cli.out, "  award-xp -user ID -points N -reason REASON")
	fmt.Fprintln(cli.out, "  watch -resource RESOURCE [-interval D] [-times N] - re-list every interval")
	fmt.Fprintln(cli.out, "Resources: "+strings.Join(resourceNames(), ", "))
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginUname := loginCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	logoutCmd := flag.NewFlagSet("logout", flag.ContinueOnError)

	refreshCmd := flag.NewFlagSet("refresh", flag.ContinueOnError)

	whoamiCmd := flag.NewFlagSet("whoami", flag.ContinueOnError)
	whoamiRefresh := whoamiCmd.Bool("refresh", false, "Re-read the profile from the server.")

	listCmd := flag.NewFlagSet("list", flag.ContinueOnError)
	listRes := listCmd.String("resource", "", "The resource to list.")
	listQuery := queryFlags(listCmd)

	deleteCmd := flag.NewFlagSet("delete", flag.ContinueOnError)
	deleteRes := deleteCmd.String("resource", "", "The resource to delete from.")
	deleteID := deleteCmd.String("id", "", "The item's ID.")
	deleteYes := deleteCmd.Bool("yes", false, "Do not ask for confirmation.")

	createClassCmd := flag.NewFlagSet("create-class", flag.ContinueOnError)
	className := createClassCmd.String("name", "", "The class name, e.g. X IPA 1.")
	classSemester := createClassCmd.String("semester", "", "Ganjil or Genap.")
	classYear := createClassCmd.String("year", core.AcademicYear(time.Now()), "The academic year.")
	classGrade := createClassCmd.Int("grade", 0, "The grade.")
	classTeacher := createClassCmd.String("teacher", "", "The homeroom teacher's ID.")

	renameQuizCmd := flag.NewFlagSet("rename-quiz", flag.ContinueOnError)
	renameID := renameQuizCmd.String("id", "", "The quiz ID.")
	renameTitle := renameQuizCmd.String("title", "", "The new title.")

	awardCmd := flag.NewFlagSet("award-xp", flag.ContinueOnError)
	awardUser := awardCmd.String("user", "", "The user's ID.")
	awardPoints := awardCmd.Int("points", 0, "The XP to award; negative to take back.")
	awardReason := awardCmd.String("reason", "", "Why.")

	watchCmd := flag.NewFlagSet("watch", flag.ContinueOnError)
	watchRes := watchCmd.String("resource", "", "The resource to watch.")
	watchInterval := watchCmd.Duration("interval", cli.conf.PollInterval, "The refresh interval.")
	watchTimes := watchCmd.Int("times", 0, "Stop after N refreshes; 0 runs until interrupted.")
	watchQuery := queryFlags(watchCmd)

	for _, fs := range []*flag.FlagSet{loginCmd, logoutCmd, refreshCmd, whoamiCmd, listCmd, deleteCmd, createClassCmd, renameQuizCmd, awardCmd, watchCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *loginUname == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginUname, string(pwd))

	case "logout":
		if err := logoutCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.logout(ctx)

	case "refresh":
		if err := refreshCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.refresh(ctx)

	case "whoami":
		if err := whoamiCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.whoami(ctx, *whoamiRefresh)

	case "list":
		if err := listCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		rc, err := cli.resource(*listRes, listCmd)
		if err != nil {
			return err
		}
		q, err := listQuery.query()
		if err != nil {
			return err
		}
		return rc.list(ctx, cli, q, listQuery.local())

	case "delete":
		if err := deleteCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *deleteID == "" {
			deleteCmd.Usage()
			return errHelp
		}
		rc, err := cli.resource(*deleteRes, deleteCmd)
		if err != nil {
			return err
		}
		confirmer := cli.confirmer
		if *deleteYes {
			confirmer = controller.AutoConfirm{}
		}
		return rc.delete(ctx, cli, confirmer, *deleteID)

	case "create-class":
		if err := createClassCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *className == "" || *classSemester == "" {
			createClassCmd.Usage()
			return errHelp
		}
		return cli.createClass(ctx, *className, *classSemester, *classYear, *classGrade, *classTeacher)

	case "rename-quiz":
		if err := renameQuizCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *renameID == "" || *renameTitle == "" {
			renameQuizCmd.Usage()
			return errHelp
		}
		return cli.renameQuiz(ctx, *renameID, *renameTitle)

	case "award-xp":
		if err := awardCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *awardUser == "" || *awardPoints == 0 {
			awardCmd.Usage()
			return errHelp
		}
		return cli.awardXP(ctx, *awardUser, *awardPoints, *awardReason)

	case "watch":
		if err := watchCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		rc, err := cli.resource(*watchRes, watchCmd)
		if err != nil {
			return err
		}
		q, err := watchQuery.query()
		if err != nil {
			return err
		}
		return rc.watch(ctx, cli, q, watchQuery.local(), *watchInterval, *watchTimes)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) resource(name string, fs *flag.FlagSet) (resourceCommand, error) {
	if name == "" {
		fs.Usage()
		return nil, errHelp
	}
	rc, ok := resources[name]
	if !ok {
		return nil, fmt.Errorf("%q: no such resource", name)
	}
	return rc, nil
}

type listFlags struct {
	search, sort, order, filter       *string
	localSort, localOrder, localMatch *string
	page, limit                       *int
}

func queryFlags(fs *flag.FlagSet) listFlags {
	return listFlags{
		search: fs.String("search", "", "Search text."),
		sort:   fs.String("sort", "", "The field to sort by."),
		order:  fs.String("order", api.OrderDesc, "asc or desc."),
		filter: fs.String("filter", "", "Comma separated key=value filters."),
		page:   fs.Int("page", 1, "The page."),
		limit:  fs.Int("limit", api.DefaultLimit, "Items per page."),

		localSort:  fs.String("local-sort", "", "Re-sort the fetched page by a column."),
		localOrder: fs.String("local-order", api.OrderAsc, "asc or desc, for -local-sort."),
		localMatch: fs.String("local-match", "", "Only show rows of the fetched page containing this text."),
	}
}

func (lf listFlags) local() localView {
	return localView{sort: *lf.localSort, order: strings.ToLower(*lf.localOrder), match: *lf.localMatch}
}

func (lf listFlags) query() (api.Query, error) {
	q := api.Query{
		Page:   *lf.page,
		Limit:  *lf.limit,
		Search: *lf.search,
		Sort:   *lf.sort,
		Order:  strings.ToLower(*lf.order),
	}
	if q.Order != api.OrderAsc && q.Order != api.OrderDesc {
		return q, fmt.Errorf("%q: order must be asc or desc", *lf.order)
	}
	if *lf.filter == "" {
		return q, nil
	}
	for _, kv := range strings.Split(*lf.filter, ",") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return q, fmt.Errorf("%q: filters must look like key=value", kv)
		}
		q = q.WithFilter(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return q, nil
}

// terminalNavigator tells the operator where the dashboard would have sent them.
type terminalNavigator struct {
	out io.Writer
}

func (n terminalNavigator) Redirect(path string) {
	fmt.Fprintf(n.out, "Session ended (%s). Sign in again with: admin login -username USERNAME\n", path)
}

// promptConfirmer asks a y/N question on the terminal.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (c promptConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	answer, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
