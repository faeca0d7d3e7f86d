package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/pkg/config"
	"github.com/gnames/gnlca/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hitsCSV = `qseqid,pident,length,bitscore,superkingdom,phylum,class,order,family,genus,species
q1,99.5,250,450,Bacteria,Firmicutes,Bacilli,Bacillales,Bacillaceae,Bacillus,Bacillus subtilis
q1,99.0,250,450,Bacteria,Firmicutes,Bacilli,Bacillales,Bacillaceae,Bacillus,Bacillus cereus
q1,97.0,250,300,Bacteria,Proteobacteria,Gammaproteobacteria,Enterobacterales,Enterobacteriaceae,Escherichia,Escherichia coli
q2,88.0,250,400,Bacteria,Firmicutes,Bacilli,Bacillales,Bacillaceae,Bacillus,Bacillus subtilis
`

func TestGetConsensusCmd_Flags(t *testing.T) {
	cmd := getConsensusCmd()
	assert.Equal(t, "consensus", cmd.Name())

	tests := []struct {
		flag, short string
	}{
		{"mode", "m"},
		{"bitscore-fraction", "b"},
		{"min-length", "l"},
		{"min-bitscore", "s"},
		{"cutoffs", "c"},
		{"retain-identity", "i"},
		{"output", "o"},
		{"format", "f"},
		{"db", ""},
		{"jobs", "j"},
	}
	for _, v := range tests {
		f := cmd.Flags().Lookup(v.flag)
		require.NotNil(t, f, v.flag)
		assert.Equal(t, v.short, f.Shorthand, v.flag)
	}
}

func TestRunConsensus(t *testing.T) {
	tests := []struct {
		msg   string
		opts  []config.Option
		lines []string
	}{
		{
			msg:  "soft",
			opts: nil,
			lines: []string{
				"sequence_name,superkingdom,phylum,class,order,family,genus,species,lca,lca_rank,hits_num",
				"q1,Bacteria,Firmicutes,Bacilli,Bacillales,Bacillaceae,Bacillus,NA,Bacillus,genus,2",
				"q2,Bacteria,Firmicutes,Bacilli,Bacillales,Bacillaceae,Bacillus,Bacillus subtilis,Bacillus subtilis,species,1",
			},
		},
		{
			msg: "strict with identity",
			opts: []config.Option{
				config.OptFilterMode("strict"),
				config.OptFilterRetainIdentity(true),
			},
			lines: []string{
				"sequence_name,superkingdom,phylum,class,order,family,genus,species,lca,lca_rank,hits_num,percentage_similarity",
				"q1,Bacteria,Firmicutes,Bacilli,Bacillales,Bacillaceae,Bacillus,NA,Bacillus,genus,2,99.5",
				"q2,Bacteria,Firmicutes,Bacilli,Bacillales,NA,NA,NA,Bacillales,order,1,88",
			},
		},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			dir := t.TempDir()
			hits := writeFile(t, dir, "hits.csv", hitsCSV)
			out := filepath.Join(dir, "out.csv")

			cfg := config.New()
			cfg.Update(append(v.opts, config.OptOutputPath(out)))

			err := runConsensus(context.Background(), cfg, hits)
			require.NoError(t, err)
			assert.Equal(t, v.lines, readLines(t, out))
		})
	}
}

func TestRunConsensusErrors(t *testing.T) {
	dir := t.TempDir()
	noCol := writeFile(t, dir, "nocol.csv", "qseqid,pident,length\nq1,99,250\n")
	badRow := writeFile(t, dir, "bad.csv",
		"qseqid,pident,length,bitscore,superkingdom\nq1,abc,250,450,Bacteria\n")

	tests := []struct {
		msg  string
		path string
		opts []config.Option
		code gn.ErrorCode
	}{
		{"missing file", filepath.Join(dir, "none.csv"), nil, errcode.InputOpenError},
		{"missing column", noCol, nil, errcode.InputMissingColumnError},
		{"abort on bad row", badRow,
			[]config.Option{
				config.OptInputRanks([]string{"superkingdom"}),
				config.OptInputRowErrors("abort"),
			},
			errcode.InputRowError},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			cfg := config.New()
			cfg.Update(append(v.opts,
				config.OptOutputPath(filepath.Join(dir, "out.csv"))))
			err := runConsensus(context.Background(), cfg, v.path)
			require.Error(t, err)
			var gnErr *gn.Error
			require.ErrorAs(t, err, &gnErr)
			assert.Equal(t, v.code, gnErr.Code)
		})
	}
}
