// Package checkersvc drives one filedrop service instance through the flag
// lifecycle protocol and the functional probe suite, reconstructing service
// state purely from its HTML responses.
package checkersvc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mkrupp/filedrop-checker/internal/domain"
	"github.com/mkrupp/filedrop-checker/internal/infra/logging"
	"github.com/mkrupp/filedrop-checker/internal/page"
	flagrepo "github.com/mkrupp/filedrop-checker/internal/repo/flag"
	"github.com/mkrupp/filedrop-checker/internal/svc/checkersvc/targetclient"
	"github.com/mkrupp/filedrop-checker/internal/util/encoding"
	"github.com/mkrupp/filedrop-checker/internal/util/random"
)

const (
	defaultUsernameMinLen = 16
	defaultPasswordMinLen = 16

	fileTokenBytes = 16
)

// Persisted flag record fields. userid and flagid are written for audit
// purposes only; redemption never reads them back.
const (
	fieldUsername = "username"
	fieldPassword = "password"
	fieldUserID   = "userid"
	fieldFileID   = "fileid"
	fieldFileName = "filename"
	fieldFlagID   = "flagid"
)

// CheckerService verifies a single target service instance. One service value
// handles one verification invocation at a time; placement, redemption and
// the probe suite share no state beyond the flag repository.
type CheckerService struct {
	Config CheckerConfig
	Client targetclient.Client
	Flags  flagrepo.Repository
	Rand   *random.Generator
	Log    logging.Logger
}

// NewCheckerService creates a new CheckerService with the given target client,
// flag repository factory and configuration. A nil generator falls back to a
// freshly seeded one.
func NewCheckerService(
	client targetclient.Client,
	repoFactory flagrepo.RepositoryFactory,
	gen *random.Generator,
	cfg CheckerConfig,
) (*CheckerService, error) {
	log := logging.GetLogger("svc.checkersvc.checker_service")

	flags, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new flag repo: %w", err)
	}

	if gen == nil {
		gen = random.New(nil)
	}

	return &CheckerService{
		Config: cfg,
		Client: client,
		Flags:  flags,
		Rand:   gen,
		Log:    log,
	}, nil
}

// PlaceFlag deposits the tick's flag with the target service and persists the
// addressing record redemption needs. Any classified failure along the way
// means the service is not working.
func (s *CheckerService) PlaceFlag(ctx context.Context, tick int, flag string) domain.Result {
	if err := s.placeFlag(ctx, tick, flag); err != nil {
		s.Log.InfoContext(ctx, "place flag failed", "error", err)

		return domain.ResultNotWorking
	}

	return domain.ResultOK
}

func (s *CheckerService) placeFlag(ctx context.Context, tick int, flag string) error {
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

	account, err := s.fetchAccountPage(ctx, downloaderSess)
	if err != nil {
		return err
	}

	fileName := "flag." + s.fileToken() + ".txt"

	destUser := strconv.FormatInt(account.UserID, 10)
	if err := s.Client.UploadFile(ctx, uploaderSess, destUser, fileName, []byte(flag)); err != nil {
		return err
	}

	account, err = s.fetchAccountPage(ctx, downloaderSess)
	if err != nil {
		return err
	}

	file, ok := account.FileByName(fileName)
	if !ok {
		return fmt.Errorf("%w: uploaded file not found on account page", domain.ErrServiceFailure)
	}

	record := domain.FlagRecord{
		Username: downloader.Username,
		Password: downloader.Password,
		UserID:   account.UserID,
		FileID:   file.FileID,
		FileName: fileName,
	}

	return s.storeFlagRecord(ctx, tick, record)
}

// CheckFlag verifies that the flag placed at the given tick is still
// retrievable. Service failures are deliberately collapsed into NOTFOUND
// here; there is no clean distinction between "flag gone" and "service
// broken" at redemption time, and CheckService is responsible for detecting
// broken-service conditions.
func (s *CheckerService) CheckFlag(ctx context.Context, tick int, flag string) domain.Result {
	result, err := s.checkFlag(ctx, tick, flag)
	if err != nil {
		s.Log.InfoContext(ctx, "check flag failed", "error", err)

		return domain.ResultNotFound
	}

	return result
}

func (s *CheckerService) checkFlag(ctx context.Context, tick int, flag string) (domain.Result, error) {
	record, err := s.loadFlagRecord(ctx, tick)
	if err != nil {
		if errors.Is(err, domain.ErrFlagFieldMissing) {
			s.Log.ErrorContext(ctx, "flag record incomplete", "error", err)

			return domain.ResultNotFound, nil
		}

		return domain.ResultNotFound, err
	}

	sess, err := s.Client.Login(ctx, record.Username, record.Password)
	if err != nil {
		return domain.ResultNotFound, err
	}

	body, err := s.Client.GetAccount(ctx, sess)
	if err != nil {
		return domain.ResultNotFound, err
	}

	link := fmt.Sprintf(`<a href="/download?%d">%s</a>`, record.FileID, record.FileName)
	if !bytes.Contains(body, []byte(link)) {
		s.Log.ErrorContext(ctx, "download link not found on account page", "link", link)

		return domain.ResultNotFound, nil
	}

	data, err := s.Client.DownloadFile(ctx, sess, record.FileID)
	if err != nil {
		s.Log.ErrorContext(ctx, "download failed", "fileID", record.FileID, "error", err)

		return domain.ResultNotFound, nil
	}

	if !bytes.Contains(data, []byte(flag)) {
		s.Log.ErrorContext(ctx, "downloaded file does not contain flag", "fileID", record.FileID)

		return domain.ResultNotFound, nil
	}

	return domain.ResultOK, nil
}

// Close releases resources held by the service.
func (s *CheckerService) Close() error {
	if err := s.Flags.Close(); err != nil {
		return fmt.Errorf("close flag repo: %w", err)
	}

	return nil
}

// credentialOptions selects charsets and minimum byte lengths for one
// generated credential. Maximum lengths are always the service limits.
type credentialOptions struct {
	usernameChars  []rune
	passwordChars  []rune
	usernameMinLen int
	passwordMinLen int
}

func (s *CheckerService) defaultCredentialOptions() credentialOptions {
	return credentialOptions{
		usernameChars:  random.Letters,
		passwordChars:  random.LettersDigitsPunct,
		usernameMinLen: defaultUsernameMinLen,
		passwordMinLen: defaultPasswordMinLen,
	}
}

// createUser registers a fresh random credential, retrying on username
// collisions up to the configured attempt budget. Collisions are the only
// recoverable signal; everything else aborts the current step.
func (s *CheckerService) createUser(ctx context.Context, opts credentialOptions) (domain.Credential, error) {
	for range s.Config.RegisterAttempts {
		username, err := s.Rand.String(opts.usernameMinLen, domain.UsernameMaxLen, opts.usernameChars)
		if err != nil {
			return domain.Credential{}, fmt.Errorf("generate username: %w", err)
		}

		password, err := s.Rand.String(opts.passwordMinLen, domain.PasswordMaxLen, opts.passwordChars)
		if err != nil {
			return domain.Credential{}, fmt.Errorf("generate password: %w", err)
		}

		err = s.Client.Register(ctx, username, password)

		switch {
		case err == nil:
			return domain.Credential{Username: username, Password: password}, nil
		case errors.Is(err, domain.ErrUsernameTaken):
			s.Log.DebugContext(ctx, "username collision, retrying", "username", username)
		default:
			return domain.Credential{}, err
		}
	}

	return domain.Credential{}, fmt.Errorf(
		"%w: service responded \"is already taken\" to %d random usernames",
		domain.ErrServiceFailure, s.Config.RegisterAttempts)
}

func (s *CheckerService) fetchAccountPage(ctx context.Context, sess *targetclient.Session) (domain.AccountPage, error) {
	body, err := s.Client.GetAccount(ctx, sess)
	if err != nil {
		return domain.AccountPage{}, err
	}

	return page.ParseAccountPage(body)
}

func (s *CheckerService) fileToken() string {
	return encoding.EncodeCrockfordB32LC(s.Rand.Bytes(fileTokenBytes))
}

func (s *CheckerService) storeFlagRecord(ctx context.Context, tick int, record domain.FlagRecord) error {
	fields := []struct {
		field string
		value string
	}{
		{fieldUsername, record.Username},
		{fieldPassword, record.Password},
		{fieldUserID, strconv.FormatInt(record.UserID, 10)},
		{fieldFileID, strconv.FormatInt(record.FileID, 10)},
		{fieldFileName, record.FileName},
		{fieldFlagID, record.FlagID()},
	}

	for _, entry := range fields {
		if err := s.Flags.Put(ctx, entry.field, tick, []byte(entry.value)); err != nil {
			return fmt.Errorf("store %s: %w", entry.field, err)
		}
	}

	s.Log.DebugContext(ctx, "flag record stored", logging.Group("flag",
		"username", record.Username,
		"fileID", record.FileID,
		"fileName", record.FileName,
		"flagID", record.FlagID(),
	))

	return nil
}

// loadFlagRecord reads back the fields redemption needs. userid and flagid
// are not consulted.
func (s *CheckerService) loadFlagRecord(ctx context.Context, tick int) (domain.FlagRecord, error) {
	var record domain.FlagRecord

	username, err := s.loadField(ctx, fieldUsername, tick)
	if err != nil {
		return domain.FlagRecord{}, err
	}

	record.Username = username

	password, err := s.loadField(ctx, fieldPassword, tick)
	if err != nil {
		return domain.FlagRecord{}, err
	}

	record.Password = password

	fileID, err := s.loadField(ctx, fieldFileID, tick)
	if err != nil {
		return domain.FlagRecord{}, err
	}

	record.FileID, err = strconv.ParseInt(fileID, 10, 64)
	if err != nil {
		return domain.FlagRecord{}, fmt.Errorf("parse stored file id: %w", err)
	}

	fileName, err := s.loadField(ctx, fieldFileName, tick)
	if err != nil {
		return domain.FlagRecord{}, err
	}

	record.FileName = fileName

	return record, nil
}

func (s *CheckerService) loadField(ctx context.Context, field string, tick int) (string, error) {
	value, ok, err := s.Flags.Get(ctx, field, tick)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", field, err)
	}

	if !ok {
		return "", fmt.Errorf("%w: %s for tick %d", domain.ErrFlagFieldMissing, field, tick)
	}

	return string(value), nil
}
