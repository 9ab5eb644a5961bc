package bot

import (
	"fmt"
	"strings"

	"winnerbot/internal/store"
)

// User-facing texts. The bot serves a Korean-speaking event audience; the
// wording of the long notices (start, privacy) is part of the operator's
// published announcements and must not drift between releases.

const (
	msgStart = "이 봇은 이벤트 상품 발송을 위한 당첨자 관리 봇입니다.\n" +
		"아래 명령어를 사용해 주세요.\n\n" +
		"💡 사용 가능한 명령어\n" +
		"/start - 안내 메시지 보기\n" +
		"/form - 구글 폼 링크 요청\n" +
		"/list_winners - 상품별 당첨자 리스트 확인\n" +
		"/submit_winner - 상품 발송을 위한 전화번호 제출\n" +
		"/help - 명령어 설명 보기"

	msgHelpBase = "💡 사용 가능한 명령어\n" +
		"/start - 안내 메시지 보기\n" +
		"/form - 구글 폼 링크 요청\n" +
		"/list_winners - 상품별 당첨자 리스트 확인\n" +
		"/submit_winner - 상품 발송을 위한 전화번호 제출\n" +
		"/join - 진행 중인 추첨 참여\n" +
		"/help - 명령어 설명 보기\n"

	msgHelpAdmin = "\n🔒 관리자 전용 명령어\n" +
		"/add_winner - 새로운 상품 및 당첨자 등록\n" +
		"/delete_winner - 특정 당첨자 삭제\n" +
		"/delete_product_winners - 상품별 당첨자 전체 삭제\n" +
		"/change_product_name - 당첨자의 상품명 변경\n" +
		"/show_winners - 당첨자 전체 목록 (전화번호 포함)\n" +
		"/show_winners_with_phone - 전화번호 제출 완료 당첨자\n" +
		"/show_winners_without_phone - 전화번호 미제출 당첨자\n" +
		"/clear_phones_all - 전체 전화번호 삭제\n" +
		"/clear_phones_product - 상품별 전화번호 삭제\n" +
		"/export_winners - 당첨자 CSV 내보내기\n" +
		"/add_admin <id> - 관리자 추가\n" +
		"/del_admin <id> - 관리자 삭제\n" +
		"/list_admins - 관리자 목록\n" +
		"/set_groups - 필수 가입 그룹 설정\n" +
		"/lottery [분] [명수] - 추첨 시작\n" +
		"/lottery_end [명수] - 추첨 종료 및 당첨자 발표\n" +
		"/bot_on /bot_off /bot_status - 봇 켜기/끄기/상태\n" +
		"/cancel - 진행 중인 작업 취소\n"

	msgFormNotSet = "아직 구글 폼 링크가 설정되지 않았습니다."

	msgNoWinners      = "등록된 당첨자 목록이 없습니다."
	msgWinnersHeader  = "상품별 당첨자 목록:"
	msgPromptProduct  = "상품명을 입력하세요."
	msgEmptyProduct   = "상품명이 비어 있습니다. 다시 입력해 주세요."
	msgPromptHandles  = "당첨자 핸들을 입력하세요. (@포함, 한 줄에 하나씩)\n모두 입력한 후에는 /end 를 입력하면 완료됩니다."
	msgHandlesAdded   = "추가 등록되었습니다. 더 입력하거나 /end 로 완료해 주세요."
	msgNoHandles      = "등록된 핸들이 없습니다. /add_winner 부터 다시 시도해 주세요."
	msgAddDone        = "등록이 완료되었습니다."
	msgPromptDeleteAllProduct = "당첨자를 모두 삭제할 상품명을 입력하세요."
	msgPromptDeleteProduct    = "당첨자를 삭제할 상품명을 입력하세요."
	msgPromptDeleteHandles    = "삭제할 당첨자의 텔레그램 핸들을 입력하세요. (@포함, 한 줄에 하나씩)\n모두 입력한 후에는 /end 를 입력하면 완료됩니다."
	msgNoDeleteHandles        = "입력된 핸들이 없습니다. /delete_winner 부터 다시 시도해 주세요."

	msgUsernameRequired = "당첨자 확인을 위해 텔레그램 @username 이 필요합니다.\n" +
		"설정에서 사용자 이름을 등록한 후 다시 시도해 주세요."
	msgHandleNotInList = "당첨자 명단에서 텔레그램 핸들을 찾을 수 없습니다.\n" +
		"이벤트 공지의 당첨자 리스트를 다시 확인해 주세요."
	msgHandleNotInListRecheck = "당첨자 명단에서 당신의 텔레그램 핸들을 찾을 수 없습니다.\n" +
		"이벤트 공지의 당첨자 리스트를 다시 확인해 주세요."

	msgPhonePrompt = "상품 발송을 위해 전화번호가 필요합니다.\n\n" +
		"[개인정보 안내]\n" +
		"- 수집 항목: 전화번호\n" +
		"- 이용 목적: 당첨 확인 및 상품 발송\n" +
		"- 보관 기간: 상품 발송 완료 후 즉시 삭제\n" +
		"- 동의하지 않으셔도 되지만, 이 경우 상품 발송이 어렵습니다.\n\n" +
		"위 내용에 동의하시면 아래 형식으로 전화번호를 입력해주세요.\n" +
		"예시) 010-1234-5678"
	msgPhoneInvalid = "⚠️ 올바른 전화번호 형식이 아닙니다.\n\n" +
		"아래 예시처럼 다시 입력해주세요.\n" +
		"예시) 010-1234-5678"
	msgPhoneSaved = "전화번호가 정상적으로 제출되었습니다. ✅\n" +
		"상품 발송이 완료되면, 제출해 주신 전화번호는 즉시 삭제됩니다.\n" +
		"좋은 하루 되세요:)"

	msgPromptChangeHandle  = "상품명을 변경할 당첨자의 텔레그램 핸들을 입력하세요. (@포함)"
	msgPromptNewProduct    = "새 상품명을 입력하세요."
	msgPromptClearProduct  = "전화번호를 삭제할 상품명을 입력하세요."

	msgCancelled = "진행 중인 작업을 취소했습니다."
	msgNoPending = "취소할 작업이 없습니다."

	msgAdminUsageAdd = "사용법: /add_admin <user_id>"
	msgAdminUsageDel = "사용법: /del_admin <user_id>"
	msgAdminSelfRemoval = "자기 자신은 관리자 목록에서 삭제할 수 없습니다."
	msgAdminListEmpty   = "등록된 관리자가 없습니다."
	msgAdminListHeader  = "관리자 목록:"

	msgGroupsPromptTail = "새 그룹을 한 줄에 하나씩 입력하세요. (숫자 ID, @username, 초대 링크)\n" +
		"모두 입력한 후에는 /end 를 입력하면 완료됩니다."
	msgGroupsNone = "(없음)"

	msgLotteryGroupsMissing = "필수 가입 그룹이 설정되지 않았습니다. /set_groups 로 먼저 설정해 주세요."
	msgLotteryAlreadyActive = "이미 진행 중인 추첨이 있습니다. /lottery_end 로 먼저 종료해 주세요."
	msgLotteryNoActive      = "진행 중인 추첨이 없습니다."
	msgLotteryJoined        = "추첨에 참여되었습니다. 행운을 빕니다! 🍀"
	msgLotteryDuplicate     = "이미 참여하셨습니다."
	msgLotteryNotQualified  = "참여 조건을 만족하지 않습니다. 필수 그룹 가입 여부를 확인해 주세요."
	msgLotteryNoParticipants = "참여자가 없어 추첨이 종료되었습니다."
	msgLotteryGroupOnly      = "추첨은 그룹 채팅에서만 사용할 수 있습니다."

	msgExportEmpty = "내보낼 당첨자 데이터가 없습니다."

	msgBotOn     = "봇이 활성화되었습니다."
	msgBotOff    = "봇이 비활성화되었습니다."
	msgBotStatusOn  = "봇 상태: 활성"
	msgBotStatusOff = "봇 상태: 비활성"
)

func formText(formURL string) string {
	if formURL == "" {
		return msgFormNotSet
	}
	return fmt.Sprintf("구글 폼 링크입니다:\n%s", formURL)
}

func deletedProductText(product string, deleted int64) string {
	return fmt.Sprintf("%s 상품의 당첨자 %d명을 삭제했습니다.", product, deleted)
}

func changeOKText(handle, newProduct string) string {
	return fmt.Sprintf("%s 핸들의 상품명을 %s(으)로 변경했습니다.", handle, newProduct)
}

func changeConflictText(handle, newProduct string) string {
	return fmt.Sprintf("%s 상품에 이미 %s 당첨자가 등록되어 있습니다.", newProduct, handle)
}

func changeNotFoundText(handle string) string {
	return fmt.Sprintf("%s 핸들의 당첨 기록을 찾을 수 없습니다.", handle)
}

func clearedPhonesText(cleared int64) string {
	return fmt.Sprintf("전화번호 %d건을 삭제했습니다.", cleared)
}

func clearedProductPhonesText(product string, cleared int64) string {
	return fmt.Sprintf("%s 상품의 전화번호 %d건을 삭제했습니다.", product, cleared)
}

func adminAddedText(userID int64) string {
	return fmt.Sprintf("관리자(%d)를 추가했습니다.", userID)
}

func adminRemovedText(userID int64) string {
	return fmt.Sprintf("관리자(%d)를 삭제했습니다.", userID)
}

func adminNotFoundText(userID int64) string {
	return fmt.Sprintf("관리자 목록에서 %d 를 찾을 수 없습니다.", userID)
}

func groupsPromptText(current []string) string {
	shown := msgGroupsNone
	if len(current) > 0 {
		shown = strings.Join(current, "\n")
	}
	return fmt.Sprintf("현재 필수 가입 그룹:\n%s\n\n%s", shown, msgGroupsPromptTail)
}

func groupsSavedText(count int) string {
	return fmt.Sprintf("필수 가입 그룹 %d개를 저장했습니다.", count)
}

func lotteryStartedText(durationMinutes, winnerCount int) string {
	var b strings.Builder
	b.WriteString("🎉 추첨이 시작되었습니다!\n")
	if durationMinutes > 0 {
		fmt.Fprintf(&b, "진행 시간: %d분\n", durationMinutes)
	}
	fmt.Fprintf(&b, "당첨 인원: %d명\n", winnerCount)
	b.WriteString("/join 명령어로 참여해 주세요.")
	return b.String()
}

func lotteryResultText(participants int, winners []store.Participant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 추첨 결과 (참여자 %d명)\n당첨자:", participants)
	for i, w := range winners {
		name := w.Username
		if name == "" {
			name = fmt.Sprintf("id:%d", w.UserID)
		} else if !strings.HasPrefix(name, "@") {
			name = "@" + name
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, name)
	}
	return b.String()
}

func winnerListText(groups []store.ProductGroup, showPhone bool) string {
	if len(groups) == 0 {
		return msgNoWinners
	}
	lines := []string{msgWinnersHeader}
	for _, g := range groups {
		lines = append(lines, "", g.Product+":")
		for i, w := range g.Winners {
			line := fmt.Sprintf("%d. %s", i+1, w.Handle)
			if showPhone {
				if w.PhoneNumber.Valid {
					line += " " + w.PhoneNumber.String
				} else {
					line += " (미제출)"
				}
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func deleteReportText(product string, results map[string]int64, order []string) string {
	var deleted, missing []string
	seen := make(map[string]struct{}, len(order))
	for _, h := range order {
		normalized := store.NormalizeHandle(h)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		if results[normalized] > 0 {
			deleted = append(deleted, normalized)
		} else {
			missing = append(missing, normalized)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s 상품 삭제 결과", product)
	if len(deleted) > 0 {
		fmt.Fprintf(&b, "\n삭제됨 (%d): %s", len(deleted), strings.Join(deleted, ", "))
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, "\n찾을 수 없음 (%d): %s", len(missing), strings.Join(missing, ", "))
	}
	return b.String()
}
