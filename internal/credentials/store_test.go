package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aion-lab/aion-trading/pkg/errors"
)

type StoreTestSuite struct {
	suite.Suite
	store *Store
	path  string
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "credentials.json")
	s.store = NewStore(s.path)
}

func (s *StoreTestSuite) TestLoadMissingFileYieldsZero() {
	creds, err := s.store.Load()
	s.Require().NoError(err)
	s.Require().True(creds.IsZero())
}

func (s *StoreTestSuite) TestSaveAndLoad() {
	err := s.store.Save(Credentials{APIKey: "key", APISecret: "secret"})
	s.Require().NoError(err)

	creds, err := s.store.Load()
	s.Require().NoError(err)
	s.Require().Equal("key", creds.APIKey)
	s.Require().Equal("secret", creds.APISecret)
	s.Require().False(creds.LastUpdated.IsZero())
}

func (s *StoreTestSuite) TestSaveRestrictsPermissions() {
	err := s.store.Save(Credentials{APIKey: "key", APISecret: "secret"})
	s.Require().NoError(err)

	info, err := os.Stat(s.path)
	s.Require().NoError(err)
	s.Require().Equal(os.FileMode(0o600), info.Mode().Perm())
}

func (s *StoreTestSuite) TestSaveRequiresBothFields() {
	err := s.store.Save(Credentials{APIKey: "key"})
	s.Require().Error(err)
	s.Require().True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (s *StoreTestSuite) TestClear() {
	s.Require().NoError(s.store.Save(Credentials{APIKey: "key", APISecret: "secret"}))
	s.Require().NoError(s.store.Clear())

	creds, err := s.store.Load()
	s.Require().NoError(err)
	s.Require().True(creds.IsZero())

	// Clearing again is a no-op.
	s.Require().NoError(s.store.Clear())
}

func (s *StoreTestSuite) TestLoadCorruptFile() {
	s.Require().NoError(os.WriteFile(s.path, []byte("not json"), 0o600))

	_, err := s.store.Load()
	s.Require().Error(err)
	s.Require().True(errors.HasCode(err, errors.ErrCodeCredentialStore))
}
