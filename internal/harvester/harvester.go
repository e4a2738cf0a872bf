// Gói harvester điều phối việc thu thập dữ liệu paginated từ GitHub API:
// một worker pool cố định kéo các trang từ work queue, bản ghi thô được
// chuẩn hóa rồi stream thẳng xuống export sink. Harvest hai pha (list rồi
// detail) có barrier rõ ràng: toàn bộ trang list phải xong trước khi bất kỳ
// detail lookup nào được lên lịch.

package harvester

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/thep200/github-harvester/cfg"
	"github.com/thep200/github-harvester/internal/export"
	githubapi "github.com/thep200/github-harvester/internal/github_api"
	"github.com/thep200/github-harvester/internal/model"
	"github.com/thep200/github-harvester/internal/normalizer"
	kafkapkg "github.com/thep200/github-harvester/pkg/kafka"
	"github.com/thep200/github-harvester/pkg/log"
)

const (
	phaseList   = "list"
	phaseDetail = "detail"
)

type Harvester struct {
	Logger log.Logger
	Config *cfg.Config
	Caller *githubapi.Caller

	normalizer *normalizer.Normalizer
	progress   chan Progress

	// Kafka producers, nil khi Kafka bị tắt trong config
	followerProducer    *kafkapkg.Producer
	contributorProducer *kafkapkg.Producer
}

func NewHarvester(logger log.Logger, config *cfg.Config, caller *githubapi.Caller) (*Harvester, error) {
	buffer := config.Harvester.ProgressBuffer
	if buffer <= 0 {
		buffer = 64
	}

	h := &Harvester{
		Logger:     logger,
		Config:     config,
		Caller:     caller,
		normalizer: normalizer.NewNormalizer(),
		progress:   make(chan Progress, buffer),
	}

	if config.Kafka.Enabled {
		h.followerProducer = kafkapkg.NewProducer(config, logger, config.Kafka.Producer.TopicFollower)
		h.contributorProducer = kafkapkg.NewProducer(config, logger, config.Kafka.Producer.TopicContributor)
	}

	return h, nil
}

// Close đóng các Kafka producer nếu có
func (h *Harvester) Close() error {
	if h.followerProducer != nil {
		if err := h.followerProducer.Close(); err != nil {
			return err
		}
	}
	if h.contributorProducer != nil {
		return h.contributorProducer.Close()
	}
	return nil
}

// Run tạo job cho target rồi chạy đến trạng thái terminal
func (h *Harvester) Run(ctx context.Context, target FetchTarget) *HarvestJob {
	return h.RunJob(ctx, NewJob(target))
}

// RunJob chạy một harvest job đến trạng thái terminal. Caller luôn nhận
// được hoặc một export path kèm số dòng, hoặc một lý do thất bại, không
// bao giờ một file rỗng im lặng. Job được truyền vào để caller có thể
// giữ tham chiếu và Abandon khi đang chạy.
func (h *Harvester) RunJob(ctx context.Context, job *HarvestJob) *HarvestJob {
	target := job.Target
	h.Logger.Info(ctx, "Bắt đầu harvest %s", target.Describe())

	if err := target.Validate(); err != nil {
		job.fail(err.Error())
		return job
	}

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-flight: target không tồn tại thì fail job chứ không crash
	if err := h.preflight(jobCtx, target); err != nil {
		job.fail(err.Error())
		return job
	}

	path := filepath.Join(h.Config.Export.Dir, target.ExportFileName())
	writer, err := export.NewWriter(path, target.Header(), h.Config.Export.KeepPartial)
	if err != nil {
		job.fail(fmt.Sprintf("export error: %v", err))
		return job
	}

	// Sink goroutine duy nhất ghi dòng theo đúng thứ tự nhận được.
	// Sau khi job fail vẫn drain channel để worker không bị kẹt.
	rows := make(chan []string, 256)
	var sinkWg sync.WaitGroup
	sinkWg.Add(1)
	go func() {
		defer sinkWg.Done()
		for fields := range rows {
			if job.Status() == StatusFailed {
				continue
			}
			if err := writer.WriteRow(fields); err != nil {
				job.fail(fmt.Sprintf("export write error: %v", err))
				cancel()
			}
		}
	}()

	switch target.Kind {
	case KindFollowers:
		h.harvestFollowers(jobCtx, cancel, job, rows)
	case KindContributors:
		h.harvestContributors(jobCtx, cancel, job, rows)
	case KindForks:
		h.harvestForks(jobCtx, cancel, job, rows)
	}

	close(rows)
	sinkWg.Wait()

	if job.isAbandoned() && job.Status() == StatusRunning {
		job.fail("job abandoned by caller")
	}

	if job.Status() == StatusFailed {
		if err := writer.Discard(); err != nil {
			h.Logger.Warn(ctx, "Không dọn được file export: %v", err)
		}
		h.Logger.Error(ctx, "Harvest %s thất bại: %s", target.Describe(), job.Reason())
		return job
	}

	if err := writer.Commit(); err != nil {
		job.fail(fmt.Sprintf("export commit error: %v", err))
		return job
	}

	job.complete(writer.Path())
	h.Logger.Info(ctx, "Harvest %s hoàn thành: %d dòng, %d bị bỏ qua, %d trang, file %s",
		target.Describe(), job.RecordsNormalized(), job.RecordsDropped(), job.PagesFetched(), writer.Path())
	return job
}

// preflight kiểm tra target có tồn tại trước khi bắt đầu
func (h *Harvester) preflight(ctx context.Context, target FetchTarget) error {
	switch target.Kind {
	case KindFollowers:
		ok, err := h.Caller.UserExists(ctx, target.Username)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %q not found", target.Username)
		}
	case KindContributors:
		ok, err := h.Caller.RepoExists(ctx, target.Owner, target.Repo)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("repository %s/%s not found", target.Owner, target.Repo)
		}
	}
	return nil
}

// crawlPages kéo toàn bộ trang của một listing bằng worker pool.
// handle được gọi trên từng bản ghi thô từ nhiều worker đồng thời.
// Lỗi fatal của một trang hủy toàn bộ work còn lại của job này.
func (h *Harvester) crawlPages(ctx context.Context, cancel context.CancelFunc, job *HarvestJob, firstURL string, handle func(githubapi.RawRecord)) {
	q := newWorkQueue(firstURL)

	// Abandon hoặc context hủy thì đóng queue, request đang bay tự drain
	stopWatch := make(chan struct{})
	go func() {
		select {
		case <-job.Abandoned():
			q.Close()
		case <-ctx.Done():
			q.Close()
		case <-stopWatch:
		}
	}()
	defer close(stopWatch)

	workers := h.Config.Harvester.PageWorkers
	if workers <= 0 {
		workers = 10
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				pageURL, ok := q.Pop()
				if !ok {
					return
				}

				page, err := h.Caller.FetchPage(ctx, pageURL)
				if err != nil {
					// Không chấp nhận partial harvest im lặng: một trang
					// fail là cả job fail
					if ctx.Err() == nil {
						job.fail(fmt.Sprintf("page fetch failed: %v", err))
					}
					q.Close()
					q.Finish()
					cancel()
					return
				}

				if page.NextURL != "" {
					q.Push(page.NextURL)
				}
				for _, rec := range page.Records {
					handle(rec)
				}

				job.addPage()
				h.notify(Progress{
					Phase:             phaseList,
					PagesFetched:      job.PagesFetched(),
					RecordsNormalized: job.RecordsNormalized(),
				})
				q.Finish()
			}
		}()
	}
	wg.Wait()
}

// harvestFollowers là harvest hai pha: pha 1 thu thập toàn bộ login của
// follower, pha 2 fan-out lấy detail từng follower qua worker pool riêng
func (h *Harvester) harvestFollowers(ctx context.Context, cancel context.CancelFunc, job *HarvestJob, rows chan<- []string) {
	var mu sync.Mutex
	logins := make([]string, 0, 128)

	h.crawlPages(ctx, cancel, job, h.Caller.FollowersURL(job.Target.Username), func(rec githubapi.RawRecord) {
		login, _ := rec["login"].(string)
		if login == "" {
			job.addDropped()
			return
		}
		mu.Lock()
		logins = append(logins, login)
		mu.Unlock()
	})

	if job.Status() == StatusFailed || job.isAbandoned() {
		return
	}

	// Barrier: đến đây toàn bộ trang list đã xong, mới được lên lịch detail
	h.Logger.Info(ctx, "Pha list xong, %d follower cần lấy detail", len(logins))

	detailWorkers := h.Config.Harvester.DetailWorkers
	if detailWorkers <= 0 {
		detailWorkers = 10
	}

	sem := make(chan struct{}, detailWorkers)
	var wg sync.WaitGroup
	for _, login := range logins {
		if job.isAbandoned() || job.Status() == StatusFailed {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(login string) {
			defer wg.Done()
			defer func() { <-sem }()

			detail, err := h.Caller.UserDetails(ctx, login)
			if err != nil {
				if githubapi.IsNotFound(err) {
					// Tài khoản biến mất giữa chừng harvest: bỏ qua và đếm
					job.addDropped()
					return
				}
				if ctx.Err() != nil {
					return
				}
				job.fail(fmt.Sprintf("detail fetch failed for %s: %v", login, err))
				cancel()
				return
			}

			row, err := h.normalizer.Follower(login, detail)
			if err != nil {
				job.addDropped()
				return
			}
			h.emitFollower(ctx, job, rows, row)
		}(login)
	}
	wg.Wait()
}

func (h *Harvester) harvestContributors(ctx context.Context, cancel context.CancelFunc, job *HarvestJob, rows chan<- []string) {
	// Lấy detail của repository một lần, gắn full_name vào từng dòng
	repoDetail, err := h.Caller.RepoDetails(ctx, job.Target.Owner, job.Target.Repo)
	if err != nil {
		job.fail(fmt.Sprintf("repository detail fetch failed: %v", err))
		return
	}
	fullName, _ := repoDetail["full_name"].(string)
	if fullName == "" {
		fullName = job.Target.Owner + "/" + job.Target.Repo
	}

	h.crawlPages(ctx, cancel, job, h.Caller.ContributorsURL(job.Target.Owner, job.Target.Repo), func(rec githubapi.RawRecord) {
		row, err := h.normalizer.Contributor(rec, fullName)
		if err != nil {
			job.addDropped()
			return
		}
		h.emitContributor(ctx, job, rows, row)
	})
}

func (h *Harvester) harvestForks(ctx context.Context, cancel context.CancelFunc, job *HarvestJob, rows chan<- []string) {
	h.crawlPages(ctx, cancel, job, h.Caller.OwnedReposURL(), func(rec githubapi.RawRecord) {
		if !normalizer.IsFork(rec) {
			return
		}
		row, err := h.normalizer.Fork(rec)
		if err != nil {
			job.addDropped()
			return
		}
		rows <- row.Fields()
		job.addRecord()
	})
}

func (h *Harvester) emitFollower(ctx context.Context, job *HarvestJob, rows chan<- []string, row *normalizer.FollowerRow) {
	rows <- row.Fields()
	job.addRecord()
	h.notify(Progress{
		Phase:             phaseDetail,
		PagesFetched:      job.PagesFetched(),
		RecordsNormalized: job.RecordsNormalized(),
	})

	if h.followerProducer != nil {
		msg := model.FollowerMessage{
			Login:       row.Login,
			Name:        row.Name,
			Company:     row.Company,
			Blog:        row.Blog,
			Email:       row.Email,
			Bio:         row.Bio,
			PublicRepos: row.PublicRepos,
			Followers:   row.Followers,
			Following:   row.Following,
			CreatedAt:   row.CreatedAt,
		}
		if err := h.followerProducer.Publish(ctx, "follower", msg); err != nil {
			h.Logger.Warn(ctx, "Không publish được follower %s vào Kafka: %v", row.Login, err)
		}
	}
}

func (h *Harvester) emitContributor(ctx context.Context, job *HarvestJob, rows chan<- []string, row *normalizer.ContributorRow) {
	rows <- row.Fields()
	job.addRecord()

	if h.contributorProducer != nil {
		msg := model.ContributorMessage{
			Login:         row.Login,
			Contributions: row.Contributions,
			ProfileURL:    row.ProfileURL,
			RepoFullName:  row.RepoFullName,
		}
		if err := h.contributorProducer.Publish(ctx, "contributor", msg); err != nil {
			h.Logger.Warn(ctx, "Không publish được contributor %s vào Kafka: %v", row.Login, err)
		}
	}
}

// CleanFork thêm sao cho một fork rồi mới xóa nó, đúng thứ tự an toàn:
// star fail thì không xóa
func (h *Harvester) CleanFork(ctx context.Context, fullName string) error {
	if err := h.Caller.StarRepo(ctx, fullName); err != nil {
		return fmt.Errorf("cannot star %s: %w", fullName, err)
	}
	if err := h.Caller.DeleteRepo(ctx, fullName); err != nil {
		return fmt.Errorf("cannot delete fork %s: %w", fullName, err)
	}
	h.Logger.Info(ctx, "Đã star và xóa fork %s", fullName)
	return nil
}
