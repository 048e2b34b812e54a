package checkersvc

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/mkrupp/filedrop-checker/internal/domain"
	"github.com/mkrupp/filedrop-checker/internal/util/random"
)

const unicodePoolSample = 8

// probe is one independent functional-invariant check. Probes are
// side-effect isolated: each one registers its own throwaway accounts and
// uploads uniquely named files, so an abandoned run cannot corrupt later
// ticks.
type probe struct {
	name string
	run  func(context.Context) error
}

// CheckService runs all functional probes in a randomly shuffled order and
// aggregates their verdicts. One probe's failure never stops the others; any
// failure makes the overall result NOTWORKING.
func (s *CheckerService) CheckService(ctx context.Context) domain.Result {
	probes := []probe{
		{"username_case_insensitive", s.probeUsernameCaseInsensitive},
		{"password_case_insensitive", s.probePasswordCaseInsensitive},
		{"logout", s.probeLogout},
		{"upload_by_username", s.probeUploadByUsername},
		{"upload_by_userid", s.probeUploadByUserID},
		{"max_username_len", s.probeMaxUsernameLen},
		{"max_password_len", s.probeMaxPasswordLen},
		{"unicode_username", s.probeUnicodeUsername},
		{"unicode_password", s.probeUnicodePassword},
		{"unicode_credentials_case_insensitive", s.probeUnicodeCredentialsCaseInsensitive},
	}

	// shuffled every invocation to surface ordering-dependent bugs in the target
	s.Rand.Shuffle(len(probes), func(i, j int) {
		probes[i], probes[j] = probes[j], probes[i]
	})

	result := domain.ResultOK

	for _, probe := range probes {
		log := s.Log.With("probe", probe.name)
		log.InfoContext(ctx, "executing probe")

		if err := probe.run(ctx); err != nil {
			log.InfoContext(ctx, "probe failed", "error", err)

			result = domain.ResultNotWorking

			continue
		}

		log.InfoContext(ctx, "probe passed")
	}

	return result
}

func (s *CheckerService) probeUsernameCaseInsensitive(ctx context.Context) error {
	cred, err := s.createUser(ctx, s.defaultCredentialOptions())
	if err != nil {
		return err
	}

	return s.loginAndFetchAccount(ctx, s.Rand.ShuffleCase(cred.Username), cred.Password)
}

func (s *CheckerService) probePasswordCaseInsensitive(ctx context.Context) error {
	cred, err := s.createUser(ctx, s.defaultCredentialOptions())
	if err != nil {
		return err
	}

	return s.loginAndFetchAccount(ctx, cred.Username, s.Rand.ShuffleCase(cred.Password))
}

func (s *CheckerService) probeLogout(ctx context.Context) error {
	return s.Client.Logout(ctx)
}

func (s *CheckerService) probeUploadByUsername(ctx context.Context) error {
	return s.probeUploadRoundTrip(ctx, false)
}

func (s *CheckerService) probeUploadByUserID(ctx context.Context) error {
	return s.probeUploadRoundTrip(ctx, true)
}

// probeUploadRoundTrip verifies that a file addressed either by username or
// by numeric user ID lands in the recipient's listing and downloads back
// byte-identical.
func (s *CheckerService) probeUploadRoundTrip(ctx context.Context, byUserID bool) error {
	uploader, err := s.createUser(ctx, s.defaultCredentialOptions())
	if err != nil {
		return err
	}

	uploaderSess, err := s.Client.Login(ctx, uploader.Username, uploader.Password)
	if err != nil {
		return err
	}

	if _, err := s.Client.GetAccount(ctx, uploaderSess); err != nil {
		return err
	}

	downloader, err := s.createUser(ctx, s.defaultCredentialOptions())
	if err != nil {
		return err
	}

	downloaderSess, err := s.Client.Login(ctx, downloader.Username, downloader.Password)
	if err != nil {
		return err
	}

	destUser := downloader.Username

	if byUserID {
		account, err := s.fetchAccountPage(ctx, downloaderSess)
		if err != nil {
			return err
		}

		destUser = strconv.FormatInt(account.UserID, 10)
	}

	fileName := s.fileToken() + ".txt"
	payload := s.Rand.Payload()

	if err := s.Client.UploadFile(ctx, uploaderSess, destUser, fileName, payload); err != nil {
		return err
	}

	account, err := s.fetchAccountPage(ctx, downloaderSess)
	if err != nil {
		return err
	}

	file, ok := account.FileByName(fileName)
	if !ok {
		return fmt.Errorf("uploaded file %q not found on account page", fileName)
	}

	body, err := s.Client.GetAccount(ctx, downloaderSess)
	if err != nil {
		return err
	}

	link := fmt.Sprintf(`<a href="/download?%d">%s</a>`, file.FileID, fileName)
	if !bytes.Contains(body, []byte(link)) {
		return fmt.Errorf("download link %q not found on account page", link)
	}

	data, err := s.Client.DownloadFile(ctx, downloaderSess, file.FileID)
	if err != nil {
		return err
	}

	if !bytes.Equal(data, payload) {
		return fmt.Errorf("downloaded payload does not match uploaded payload (%d vs %d bytes)",
			len(data), len(payload))
	}

	return nil
}

func (s *CheckerService) probeMaxUsernameLen(ctx context.Context) error {
	opts := s.defaultCredentialOptions()
	opts.usernameMinLen = domain.UsernameMaxLen

	cred, err := s.createUser(ctx, opts)
	if err != nil {
		return err
	}

	return s.loginAndFetchAccount(ctx, cred.Username, cred.Password)
}

func (s *CheckerService) probeMaxPasswordLen(ctx context.Context) error {
	opts := s.defaultCredentialOptions()
	opts.passwordMinLen = domain.PasswordMaxLen

	cred, err := s.createUser(ctx, opts)
	if err != nil {
		return err
	}

	return s.loginAndFetchAccount(ctx, cred.Username, cred.Password)
}

func (s *CheckerService) probeUnicodeUsername(ctx context.Context) error {
	opts := s.defaultCredentialOptions()
	opts.usernameChars = s.unicodeCharset()

	cred, err := s.createUser(ctx, opts)
	if err != nil {
		return err
	}

	return s.loginAndFetchAccount(ctx, cred.Username, cred.Password)
}

func (s *CheckerService) probeUnicodePassword(ctx context.Context) error {
	opts := s.defaultCredentialOptions()
	opts.passwordChars = s.unicodeCharset()

	cred, err := s.createUser(ctx, opts)
	if err != nil {
		return err
	}

	return s.loginAndFetchAccount(ctx, cred.Username, cred.Password)
}

func (s *CheckerService) probeUnicodeCredentialsCaseInsensitive(ctx context.Context) error {
	opts := s.defaultCredentialOptions()
	opts.usernameChars = s.unicodeCharset()
	opts.passwordChars = s.unicodeCharset()

	cred, err := s.createUser(ctx, opts)
	if err != nil {
		return err
	}

	return s.loginAndFetchAccount(ctx, s.Rand.ShuffleCase(cred.Username), s.Rand.ShuffleCase(cred.Password))
}

// loginAndFetchAccount asserts that the credentials authenticate and that the
// resulting account page parses.
func (s *CheckerService) loginAndFetchAccount(ctx context.Context, username, password string) error {
	sess, err := s.Client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	if _, err := s.fetchAccountPage(ctx, sess); err != nil {
		return err
	}

	return nil
}

// unicodeCharset mixes ASCII letters with freshly sampled emoji and extended
// Latin characters.
func (s *CheckerService) unicodeCharset() []rune {
	charset := make([]rune, 0, len(random.Letters)+2*unicodePoolSample)
	charset = append(charset, random.Letters...)
	charset = append(charset, []rune(s.Rand.Emojis(unicodePoolSample))...)
	charset = append(charset, []rune(s.Rand.Latin(unicodePoolSample))...)

	return charset
}
